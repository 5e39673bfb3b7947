package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-nb2html/internal/nbformat"
)

// ErrRender indicates cell rendering failed.
var ErrRender = errors.New("notebook rendering failed")

// highlightStyle is the chroma style used for all code highlighting.
// Classes are emitted instead of inline styles so the generated stylesheet
// can be placed once in the document head.
const highlightStyle = "github"

// displayPriority orders MIME types from richest to plainest, matching the
// display order used by Jupyter's own HTML export.
var displayPriority = []string{
	"text/html",
	"image/svg+xml",
	"image/png",
	"image/jpeg",
	"text/markdown",
	"application/json",
	"text/plain",
}

// resourceExtensions maps binary MIME types to side-car file extensions.
var resourceExtensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpeg",
	"image/svg+xml": "svg",
}

// Options controls cell rendering.
type Options struct {
	IncludeInput bool // emit code-cell input areas
	EmbedImages  bool // inline images as data: URIs instead of side-car files
}

// RenderedNotebook is the output of a render pass: an HTML body fragment and
// the binary resources that could not be embedded (filename -> payload).
type RenderedNotebook struct {
	Body      string
	Resources map[string][]byte
}

// Renderer abstracts notebook-to-HTML-body rendering.
type Renderer interface {
	Render(ctx context.Context, nb *nbformat.Notebook) (*RenderedNotebook, error)
}

// HTMLRenderer renders notebook cells to an HTML fragment using goldmark for
// markdown cells and chroma for code-cell inputs.
type HTMLRenderer struct {
	opts      Options
	md        *MarkdownRenderer
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// NewHTMLRenderer creates an HTMLRenderer with the given options.
func NewHTMLRenderer(opts Options) *HTMLRenderer {
	return &HTMLRenderer{
		opts:      opts,
		md:        NewMarkdownRenderer(),
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(highlightStyle),
	}
}

// HighlightCSS returns the stylesheet matching the chroma classes emitted for
// code cells and fenced blocks.
func (r *HTMLRenderer) HighlightCSS() (string, error) {
	var buf strings.Builder
	if err := r.formatter.WriteCSS(&buf, r.style); err != nil {
		return "", fmt.Errorf("%w: highlight stylesheet: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// Render converts all cells to an HTML body fragment.
// Raw cells are skipped, matching default notebook export behavior.
func (r *HTMLRenderer) Render(ctx context.Context, nb *nbformat.Notebook) (*RenderedNotebook, error) {
	out := &RenderedNotebook{Resources: map[string][]byte{}}
	lang := nb.Language()

	var body strings.Builder
	body.WriteString("<div class=\"container\" id=\"notebook-container\">\n")

	for i, cell := range nb.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch cell.Type {
		case nbformat.CellMarkdown:
			if err := r.renderMarkdownCell(ctx, &body, cell); err != nil {
				return nil, err
			}
		case nbformat.CellCode:
			if err := r.renderCodeCell(ctx, &body, cell, i, lang, out.Resources); err != nil {
				return nil, err
			}
		case nbformat.CellRaw:
			// Raw cells carry format-specific passthrough content; skipped.
		}
	}

	body.WriteString("</div>\n")
	out.Body = body.String()
	return out, nil
}

// renderMarkdownCell converts one markdown cell via goldmark.
func (r *HTMLRenderer) renderMarkdownCell(ctx context.Context, body *strings.Builder, cell nbformat.Cell) error {
	rendered, err := r.md.ToHTML(ctx, cell.Source.String())
	if err != nil {
		return err
	}
	body.WriteString("<div class=\"cell markdown_cell\">\n")
	body.WriteString(rendered)
	body.WriteString("</div>\n")
	return nil
}

// renderCodeCell emits the input area (unless disabled) and all outputs.
func (r *HTMLRenderer) renderCodeCell(ctx context.Context, body *strings.Builder, cell nbformat.Cell, cellIndex int, lang string, resources map[string][]byte) error {
	body.WriteString("<div class=\"cell code_cell\">\n")

	if r.opts.IncludeInput {
		body.WriteString("<div class=\"input_area\">\n")
		body.WriteString(inputPrompt(cell.ExecutionCount))
		if err := r.highlight(body, cell.Source.String(), lang); err != nil {
			return err
		}
		body.WriteString("</div>\n")
	}

	for j, output := range cell.Outputs {
		if err := r.renderOutput(ctx, body, output, cellIndex, j, resources); err != nil {
			return err
		}
	}

	body.WriteString("</div>\n")
	return nil
}

// highlight writes chroma-highlighted source to the body.
func (r *HTMLRenderer) highlight(body *strings.Builder, source, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("%w: tokenising input: %v", ErrRender, err)
	}
	if err := r.formatter.Format(body, r.style, iterator); err != nil {
		return fmt.Errorf("%w: formatting input: %v", ErrRender, err)
	}
	return nil
}

// renderOutput emits a single cell output by type and MIME priority.
func (r *HTMLRenderer) renderOutput(ctx context.Context, body *strings.Builder, output nbformat.Output, cellIndex, outputIndex int, resources map[string][]byte) error {
	switch output.Type {
	case nbformat.OutputStream:
		class := "output_stream output_stdout"
		if output.Name == "stderr" {
			class = "output_stream output_stderr"
		}
		writePre(body, class, output.Text.String())
		return nil

	case nbformat.OutputError:
		text := strings.Join(output.Traceback, "\n")
		if text == "" {
			text = output.EName + ": " + output.EValue
		}
		writePre(body, "output_error", text)
		return nil

	case nbformat.OutputDisplayData, nbformat.OutputExecuteResult:
		return r.renderData(ctx, body, output, cellIndex, outputIndex, resources)
	}

	// Unknown output types are skipped rather than failing the document.
	return nil
}

// renderData picks the richest available MIME representation and emits it.
func (r *HTMLRenderer) renderData(ctx context.Context, body *strings.Builder, output nbformat.Output, cellIndex, outputIndex int, resources map[string][]byte) error {
	for _, mime := range displayPriority {
		if !output.Data.Has(mime) {
			continue
		}

		switch mime {
		case "text/html":
			text, err := output.Data.Text(mime)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrRender, err)
			}
			body.WriteString("<div class=\"output_area output_html\">\n")
			body.WriteString(text)
			body.WriteString("\n</div>\n")

		case "image/svg+xml":
			return r.renderSVG(body, output, cellIndex, outputIndex, resources)

		case "image/png", "image/jpeg":
			return r.renderImage(body, output, mime, cellIndex, outputIndex, resources)

		case "text/markdown":
			text, err := output.Data.Text(mime)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrRender, err)
			}
			rendered, err := r.md.ToHTML(ctx, text)
			if err != nil {
				return err
			}
			body.WriteString("<div class=\"output_area output_markdown\">\n")
			body.WriteString(rendered)
			body.WriteString("</div>\n")

		case "application/json", "text/plain":
			text, err := output.Data.Text(mime)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrRender, err)
			}
			writePre(body, "output_text", text)
		}
		return nil
	}

	// No representation we understand; skip the output.
	return nil
}

// renderSVG inlines SVG markup or writes it as a side-car resource.
// SVG payloads are stored as text in the interchange format.
func (r *HTMLRenderer) renderSVG(body *strings.Builder, output nbformat.Output, cellIndex, outputIndex int, resources map[string][]byte) error {
	text, err := output.Data.Text("image/svg+xml")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	if r.opts.EmbedImages {
		body.WriteString("<div class=\"output_area output_svg\">\n")
		body.WriteString(text)
		body.WriteString("\n</div>\n")
		return nil
	}

	name := resourceName(cellIndex, outputIndex, "svg")
	resources[name] = []byte(text)
	writeImg(body, "output_svg", name)
	return nil
}

// renderImage embeds a raster image as a data: URI or records it as a
// side-car resource referenced relative to the HTML file.
func (r *HTMLRenderer) renderImage(body *strings.Builder, output nbformat.Output, mime string, cellIndex, outputIndex int, resources map[string][]byte) error {
	if r.opts.EmbedImages {
		text, err := output.Data.Text(mime)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRender, err)
		}
		uri := "data:" + mime + ";base64," + strings.TrimSpace(strings.ReplaceAll(text, "\n", ""))
		writeImg(body, "output_"+resourceExtensions[mime], uri)
		return nil
	}

	payload, err := output.Data.Binary(mime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	name := resourceName(cellIndex, outputIndex, resourceExtensions[mime])
	resources[name] = payload
	writeImg(body, "output_"+resourceExtensions[mime], name)
	return nil
}

// resourceName builds a stable side-car filename from cell/output position.
func resourceName(cellIndex, outputIndex int, ext string) string {
	return fmt.Sprintf("output_%d_%d.%s", cellIndex, outputIndex, ext)
}

// inputPrompt formats the execution-count prompt for an input area.
func inputPrompt(count *int) string {
	if count == nil {
		return "<div class=\"prompt input_prompt\">In&nbsp;[&nbsp;]:</div>\n"
	}
	return fmt.Sprintf("<div class=\"prompt input_prompt\">In&nbsp;[%d]:</div>\n", *count)
}

// writePre emits an escaped, ANSI-stripped preformatted block.
func writePre(body *strings.Builder, class, text string) {
	body.WriteString("<div class=\"output_area " + class + "\"><pre>")
	body.WriteString(html.EscapeString(StripANSI(text)))
	body.WriteString("</pre></div>\n")
}

// writeImg emits an image output wrapped in its output area.
func writeImg(body *strings.Builder, class, src string) {
	body.WriteString("<div class=\"output_area " + class + "\">")
	body.WriteString("<img src=\"" + html.EscapeString(src) + "\" alt=\"notebook output\"/>")
	body.WriteString("</div>\n")
}
