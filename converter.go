package nb2html

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-nb2html/internal/assets"
	"github.com/alnah/go-nb2html/internal/fileutil"
	"github.com/alnah/go-nb2html/internal/kernel"
	"github.com/alnah/go-nb2html/internal/nbformat"
	"github.com/alnah/go-nb2html/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Renderer    = (*pipeline.HTMLRenderer)(nil)
	_ pipeline.CSSInjector = (*pipeline.CSSInjection)(nil)
	_ kernel.Executor      = (*kernel.JupyterExecutor)(nil)
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// notebookExtension is the only accepted input extension (case-insensitive).
const notebookExtension = ".ipynb"

// checkpointDirName is the editor autosave directory skipped during batch
// discovery.
const checkpointDirName = ".ipynb_checkpoints"

// Converter turns notebook documents into standalone HTML reports.
// Create with NewConverter. A Converter is not safe for concurrent use; for
// parallel batches give each worker its own instance (see ConverterPool).
type Converter struct {
	opts      Options
	assetPath string
	onFailure func(FileError)

	renderer     pipeline.Renderer
	cssInjector  pipeline.CSSInjector
	executor     kernel.Executor
	shell        *pipeline.DocumentTemplate
	style        string
	highlightCSS string
	reportCSS    string
}

// NewConverter creates a Converter with default options.
// Use options to customize behavior (e.g., WithTemplate, WithExecution).
// Returns error if options are invalid or asset loading fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{opts: DefaultOptions()}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.opts.Validate(); err != nil {
		return nil, err
	}

	loader, err := assets.NewAssetResolver(c.assetPath)
	if err != nil {
		return nil, err
	}

	c.style, err = loader.LoadStyle(string(c.opts.Template))
	if err != nil {
		return nil, err
	}
	c.reportCSS, err = loader.LoadStyle(assets.ReportStyleName)
	if err != nil {
		return nil, err
	}

	shellContent, err := loader.LoadShell(string(c.opts.Template))
	if err != nil {
		return nil, err
	}
	c.shell, err = pipeline.NewDocumentTemplate(string(c.opts.Template), shellContent)
	if err != nil {
		return nil, err
	}

	// Create pipeline stages if not injected (e.g., by tests)
	if c.renderer == nil {
		renderer := pipeline.NewHTMLRenderer(pipeline.Options{
			IncludeInput: c.opts.IncludeInput,
			EmbedImages:  c.opts.EmbedImages,
		})
		c.highlightCSS, err = renderer.HighlightCSS()
		if err != nil {
			return nil, err
		}
		c.renderer = renderer
	}
	if c.cssInjector == nil {
		c.cssInjector = &pipeline.CSSInjection{}
	}
	if c.executor == nil && c.opts.Execute {
		c.executor = kernel.NewJupyterExecutor(c.opts.Timeout, c.opts.Kernel)
	}

	return c, nil
}

// Options returns a copy of the converter's configuration.
func (c *Converter) Options() Options {
	return c.opts
}

// ConvertFile converts one notebook to a standalone HTML file.
//
// outputPath may be empty, in which case the input path with its extension
// swapped for .html is used. Parent directories are created as needed.
// Non-embedded resources are written to a <output-stem>_files directory next
// to the HTML file and listed in Result.Resources.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, inputPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, inputPath, err)
	}
	if info.IsDir() || !strings.EqualFold(filepath.Ext(inputPath), notebookExtension) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, inputPath)
	}

	nb, err := nbformat.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConversion, inputPath, err)
	}

	if outputPath == "" {
		outputPath = fileutil.ReplaceExt(inputPath, ".html")
	}
	result := &Result{InputPath: inputPath, OutputPath: outputPath}

	// Execution failure is non-fatal: proceed with the outputs already in
	// the document and surface the failure on the result.
	if c.opts.Execute && c.executor != nil {
		executed, execErr := c.executor.Execute(ctx, inputPath)
		if execErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.ExecErr = execErr
		} else {
			nb = executed
		}
	}

	rendered, err := c.renderer.Render(ctx, nb)
	if err != nil {
		return nil, c.wrapStageErr(ctx, err)
	}

	doc, err := c.shell.Render(ctx, pipeline.DocumentData{
		Title:        documentTitle(nb, inputPath),
		Language:     nb.Language(),
		Style:        template.CSS(c.style),
		HighlightCSS: template.CSS(c.highlightCSS),
		Body:         template.HTML(rendered.Body), // #nosec G203 -- produced by our own renderer
	})
	if err != nil {
		return nil, c.wrapStageErr(ctx, err)
	}

	doc, err = c.cssInjector.InjectCSS(ctx, doc, c.reportCSS)
	if err != nil {
		return nil, c.wrapStageErr(ctx, err)
	}

	// The renderer emits bare resource names; point them at the side-car
	// directory the resources are written to below.
	if len(rendered.Resources) > 0 {
		doc, err = pipeline.RewriteResourcePaths(ctx, doc, resourceDirName(outputPath), rendered.Resources)
		if err != nil {
			return nil, c.wrapStageErr(ctx, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", ErrConversion, err)
	}
	// #nosec G306 -- HTML reports are meant to be readable
	if err := os.WriteFile(outputPath, []byte(doc), filePermissions); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %v", ErrConversion, outputPath, err)
	}

	if len(rendered.Resources) > 0 {
		result.Resources, err = writeResources(outputPath, rendered.Resources)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ConvertDir converts every notebook under inputDir, mirroring the relative
// directory structure under outputDir (or converting in place when outputDir
// is empty). Direct children only unless recursive is set.
//
// Batch conversion is best-effort: per-file failures are reported to the
// failure handler and skipped, and only successful results are returned.
// Only a missing or non-directory root fails the call.
func (c *Converter) ConvertDir(ctx context.Context, inputDir, outputDir string, recursive bool) ([]Result, error) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, inputDir)
	}

	notebooks, err := listNotebooks(inputDir, recursive)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %v", ErrNotADirectory, inputDir, err)
	}

	var results []Result
	for _, path := range notebooks {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		outPath, err := mirrorOutputPath(path, inputDir, outputDir)
		if err != nil {
			c.fail(FileError{Path: path, Err: err})
			continue
		}

		result, err := c.ConvertFile(ctx, path, outPath)
		if err != nil {
			c.fail(FileError{Path: path, Err: err})
			continue
		}
		results = append(results, *result)
	}

	return results, nil
}

// fail delivers a batch failure to the registered handler, if any.
func (c *Converter) fail(fe FileError) {
	if c.onFailure != nil {
		c.onFailure(fe)
	}
}

// wrapStageErr passes context errors through untouched and wraps everything
// else as a conversion failure.
func (c *Converter) wrapStageErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, ErrConversion) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrConversion, err)
}

// resourceDirName is the side-car directory name, relative to the HTML file.
func resourceDirName(outputPath string) string {
	return fileutil.Stem(outputPath) + "_files"
}

// writeResources writes non-embedded outputs to a <stem>_files directory
// next to the HTML file, in stable name order.
func writeResources(outputPath string, resources map[string][]byte) ([]string, error) {
	resourceDir := filepath.Join(filepath.Dir(outputPath), resourceDirName(outputPath))
	if err := os.MkdirAll(resourceDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating resource directory: %v", ErrConversion, err)
	}

	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(resourceDir, name)
		// #nosec G306 -- resource files are meant to be readable
		if err := os.WriteFile(path, resources[name], filePermissions); err != nil {
			return nil, fmt.Errorf("%w: writing resource %s: %v", ErrConversion, name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// listNotebooks enumerates notebook files under root in lexical order,
// skipping editor checkpoint directories.
func listNotebooks(root string, recursive bool) ([]string, error) {
	var notebooks []string

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), notebookExtension) {
				continue
			}
			notebooks = append(notebooks, filepath.Join(root, entry.Name()))
		}
		return notebooks, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == checkpointDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), notebookExtension) {
			notebooks = append(notebooks, path)
		}
		return nil
	})
	return notebooks, err
}

// mirrorOutputPath computes the HTML output path for one notebook in a batch,
// preserving the directory structure relative to the batch root.
func mirrorOutputPath(inputPath, inputDir, outputDir string) (string, error) {
	if outputDir == "" {
		return fileutil.ReplaceExt(inputPath, ".html"), nil
	}

	rel, err := filepath.Rel(inputDir, inputPath)
	if err != nil {
		return "", fmt.Errorf("%w: resolving relative path: %v", ErrConversion, err)
	}
	return filepath.Join(outputDir, fileutil.ReplaceExt(rel, ".html")), nil
}

// documentTitle picks the report title: notebook metadata first, then the
// input filename stem.
func documentTitle(nb *nbformat.Notebook, inputPath string) string {
	if nb.Metadata.Title != "" {
		return nb.Metadata.Title
	}
	return fileutil.Stem(inputPath)
}
