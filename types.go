package nb2html

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-nb2html/internal/kernel"
)

// TemplateKind selects the HTML rendering layout.
type TemplateKind string

// Template constants. No other values are permitted.
const (
	TemplateClassic TemplateKind = "classic"
	TemplateLab     TemplateKind = "lab"
	TemplateReveal  TemplateKind = "reveal"
)

// Validate checks that the template kind is a known value.
func (k TemplateKind) Validate() error {
	switch k {
	case TemplateClassic, TemplateLab, TemplateReveal:
		return nil
	}
	return fmt.Errorf("%w: %q (must be classic, lab, or reveal)", ErrInvalidTemplate, string(k))
}

// ParseTemplateKind converts a string to a TemplateKind (case-insensitive).
func ParseTemplateKind(s string) (TemplateKind, error) {
	k := TemplateKind(strings.ToLower(s))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Options is the configuration bundle for one Converter.
// Immutable once the Converter is constructed.
type Options struct {
	Template     TemplateKind  // rendering layout
	EmbedImages  bool          // inline images as data: URIs
	IncludeInput bool          // emit code-cell input areas
	Execute      bool          // run the notebook against a fresh kernel first
	Timeout      time.Duration // kernel execution bound
	Kernel       string        // kernelspec name for execution
}

// DefaultOptions mirrors the defaults of an interactive export: classic
// layout, embedded images, visible inputs, no execution.
func DefaultOptions() Options {
	return Options{
		Template:     TemplateClassic,
		EmbedImages:  true,
		IncludeInput: true,
		Execute:      false,
		Timeout:      kernel.DefaultTimeout,
		Kernel:       kernel.DefaultKernel,
	}
}

// Validate checks that options are consistent.
func (o Options) Validate() error {
	if err := o.Template.Validate(); err != nil {
		return err
	}
	if strings.ContainsAny(o.Kernel, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidKernel, o.Kernel)
	}
	return nil
}

// Result is the outcome of converting one notebook.
type Result struct {
	InputPath  string   // the notebook that was converted
	OutputPath string   // the HTML file written
	Resources  []string // side-car resource files written, if any

	// ExecErr records a non-fatal kernel execution failure: the document was
	// still converted, using whatever outputs it already contained. Nil when
	// execution was not requested or succeeded.
	ExecErr error
}

// FileError reports one skipped file during a batch conversion.
type FileError struct {
	Path string
	Err  error
}

// Option configures a Converter.
type Option func(*Converter)

// WithTemplate sets the rendering layout.
func WithTemplate(k TemplateKind) Option {
	return func(c *Converter) { c.opts.Template = k }
}

// WithEmbedImages controls whether images are inlined as data: URIs (true,
// the default) or written as side-car files next to the HTML.
func WithEmbedImages(embed bool) Option {
	return func(c *Converter) { c.opts.EmbedImages = embed }
}

// WithIncludeInput controls whether code-cell inputs appear in the output.
func WithIncludeInput(include bool) Option {
	return func(c *Converter) { c.opts.IncludeInput = include }
}

// WithExecution enables running the notebook against a fresh kernel before
// conversion. Execution failure is non-fatal; see Result.ExecErr.
func WithExecution(execute bool) Option {
	return func(c *Converter) { c.opts.Execute = execute }
}

// WithTimeout sets the kernel execution timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("nb2html: WithTimeout duration must be positive")
	}
	return func(c *Converter) { c.opts.Timeout = d }
}

// WithKernel sets the kernelspec name used for execution.
func WithKernel(name string) Option {
	return func(c *Converter) { c.opts.Kernel = name }
}

// WithAssetPath overrides the embedded templates and stylesheets with a
// custom asset directory (falling back to embedded for missing assets).
func WithAssetPath(path string) Option {
	return func(c *Converter) { c.assetPath = path }
}

// WithFailureHandler registers a callback invoked for each file skipped
// during ConvertDir. The default drops failures silently; callers that need
// to report them (such as the CLI) register a handler.
func WithFailureHandler(handler func(FileError)) Option {
	return func(c *Converter) { c.onFailure = handler }
}
