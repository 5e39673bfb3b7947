package pipeline_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alnah/go-nb2html/internal/nbformat"
	"github.com/alnah/go-nb2html/internal/pipeline"
)

// intPtr returns a pointer to n for execution counts.
func intPtr(n int) *int { return &n }

// rawString JSON-encodes s for use in a MimeBundle.
func rawString(t *testing.T, s string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshaling %q: %v", s, err)
	}
	return data
}

// defaultOpts renders with inputs shown and images embedded.
var defaultOpts = pipeline.Options{IncludeInput: true, EmbedImages: true}

// ---------------------------------------------------------------------------
// TestRender - Cell-to-fragment rendering
// ---------------------------------------------------------------------------

func TestRenderCells(t *testing.T) {
	t.Parallel()

	pngData := base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})

	tests := []struct {
		name         string
		opts         pipeline.Options
		cells        []nbformat.Cell
		wantContains []string
		wantNot      []string
	}{
		{
			name: "markdown cell",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellMarkdown, Source: "# Heading"},
			},
			wantContains: []string{"markdown_cell", "<h1", "Heading"},
		},
		{
			name: "code cell with prompt and highlighting",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "print(1)", ExecutionCount: intPtr(2)},
			},
			wantContains: []string{"code_cell", "input_area", "In&nbsp;[2]:", "chroma"},
		},
		{
			name: "unexecuted code cell prompt",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "x = 1"},
			},
			wantContains: []string{"In&nbsp;[&nbsp;]:"},
		},
		{
			name: "inputs hidden",
			opts: pipeline.Options{IncludeInput: false, EmbedImages: true},
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "secret_token = 1", Outputs: []nbformat.Output{
					{Type: nbformat.OutputStream, Name: "stdout", Text: "visible output"},
				}},
			},
			wantContains: []string{"visible output"},
			wantNot:      []string{"input_area", "secret_token"},
		},
		{
			name: "raw cell skipped",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellRaw, Source: "\\latex{preamble}"},
			},
			wantNot: []string{"latex"},
		},
		{
			name: "stream stderr class and escaping",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "x", Outputs: []nbformat.Output{
					{Type: nbformat.OutputStream, Name: "stderr", Text: "warn: a < b"},
				}},
			},
			wantContains: []string{"output_stderr", "warn: a &lt; b"},
		},
		{
			name: "error output with ansi stripped",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "x", Outputs: []nbformat.Output{
					{Type: nbformat.OutputError, EName: "ValueError", EValue: "boom",
						Traceback: []string{"\x1b[31mValueError\x1b[0m: boom"}},
				}},
			},
			wantContains: []string{"output_error", "ValueError: boom"},
			wantNot:      []string{"\x1b"},
		},
		{
			name: "embedded png as data uri",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "plot()", Outputs: []nbformat.Output{
					{Type: nbformat.OutputDisplayData, Data: nbformat.MimeBundle{
						"image/png": rawString(t, pngData),
					}},
				}},
			},
			wantContains: []string{"data:image/png;base64," + pngData},
		},
		{
			name: "html output preferred over plain text",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "df", Outputs: []nbformat.Output{
					{Type: nbformat.OutputExecuteResult, ExecutionCount: intPtr(1), Data: nbformat.MimeBundle{
						"text/html":  rawString(t, `<table class="dataframe"><tr><td>1</td></tr></table>`),
						"text/plain": rawString(t, "   col\n0    1"),
					}},
				}},
			},
			wantContains: []string{"output_html", `<table class="dataframe">`},
			wantNot:      []string{"0    1"},
		},
		{
			name: "plain text fallback",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "x", Outputs: []nbformat.Output{
					{Type: nbformat.OutputExecuteResult, ExecutionCount: intPtr(1), Data: nbformat.MimeBundle{
						"text/plain": rawString(t, "'value'"),
					}},
				}},
			},
			wantContains: []string{"output_text", "&#39;value&#39;"},
		},
		{
			name: "svg inlined when embedding",
			opts: defaultOpts,
			cells: []nbformat.Cell{
				{Type: nbformat.CellCode, Source: "x", Outputs: []nbformat.Output{
					{Type: nbformat.OutputDisplayData, Data: nbformat.MimeBundle{
						"image/svg+xml": rawString(t, "<svg><circle r=\"1\"/></svg>"),
					}},
				}},
			},
			wantContains: []string{"output_svg", "<svg><circle"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			renderer := pipeline.NewHTMLRenderer(tt.opts)
			nb := &nbformat.Notebook{Cells: tt.cells, NBFormat: 4}

			out, err := renderer.Render(context.Background(), nb)
			if err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}

			if !strings.Contains(out.Body, "notebook-container") {
				t.Error("Render() missing container wrapper")
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(out.Body, want) {
					t.Errorf("Render() missing %q in:\n%s", want, out.Body)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(out.Body, not) {
					t.Errorf("Render() should not contain %q in:\n%s", not, out.Body)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderResources - Side-car image extraction
// ---------------------------------------------------------------------------

func TestRenderSidecarResources(t *testing.T) {
	t.Parallel()

	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	pngData := base64.StdEncoding.EncodeToString(payload)

	renderer := pipeline.NewHTMLRenderer(pipeline.Options{IncludeInput: true, EmbedImages: false})
	nb := &nbformat.Notebook{NBFormat: 4, Cells: []nbformat.Cell{
		{Type: nbformat.CellCode, Source: "plot()", Outputs: []nbformat.Output{
			{Type: nbformat.OutputDisplayData, Data: nbformat.MimeBundle{
				"image/png": rawString(t, pngData),
			}},
		}},
	}}

	out, err := renderer.Render(context.Background(), nb)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	if len(out.Resources) != 1 {
		t.Fatalf("len(Resources) = %d, want 1", len(out.Resources))
	}
	data, ok := out.Resources["output_0_0.png"]
	if !ok {
		t.Fatalf("Resources missing output_0_0.png, got %v", out.Resources)
	}
	if string(data) != string(payload) {
		t.Error("resource payload does not match decoded image data")
	}
	if !strings.Contains(out.Body, `src="output_0_0.png"`) {
		t.Errorf("Render() body does not reference side-car file:\n%s", out.Body)
	}
	if strings.Contains(out.Body, "data:image/png") {
		t.Error("Render() should not embed a data URI when embedding is off")
	}
}

// ---------------------------------------------------------------------------
// TestHighlightCSS - Chroma stylesheet generation
// ---------------------------------------------------------------------------

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	renderer := pipeline.NewHTMLRenderer(defaultOpts)
	css, err := renderer.HighlightCSS()
	if err != nil {
		t.Fatalf("HighlightCSS() unexpected error: %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("HighlightCSS() missing .chroma classes:\n%s", css)
	}
}

func TestRenderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	renderer := pipeline.NewHTMLRenderer(defaultOpts)
	nb := &nbformat.Notebook{NBFormat: 4, Cells: []nbformat.Cell{
		{Type: nbformat.CellMarkdown, Source: "# x"},
	}}

	if _, err := renderer.Render(ctx, nb); err == nil {
		t.Error("Render() with cancelled context should error")
	}
}
