package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
)

// ErrTemplate indicates the document shell could not be rendered.
var ErrTemplate = errors.New("document template rendering failed")

// DocumentData is the payload passed to a document shell template.
type DocumentData struct {
	Title        string
	Language     string
	Style        template.CSS  // template stylesheet
	HighlightCSS template.CSS  // chroma-generated classes
	Body         template.HTML // rendered cell fragment
}

// DocumentTemplate wraps a parsed HTML shell for one template kind.
type DocumentTemplate struct {
	tmpl *template.Template
}

// NewDocumentTemplate parses a shell template.
func NewDocumentTemplate(name, content string) (*DocumentTemplate, error) {
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrTemplate, name, err)
	}
	return &DocumentTemplate{tmpl: tmpl}, nil
}

// Render executes the shell with the given document data.
func (t *DocumentTemplate) Render(ctx context.Context, data DocumentData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return buf.String(), nil
}
