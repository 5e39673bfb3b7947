package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInject indicates the stylesheet post-pass failed.
var ErrInject = errors.New("stylesheet injection failed")

// CSSInjector defines the contract for the report-stylesheet post-pass.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) (string, error)
}

// CSSInjection inserts a <style> block at the start of the document head via
// a DOM pass, so it applies regardless of which template produced the page.
type CSSInjection struct{}

// InjectCSS parses the document, prepends a style element to <head>, and
// renders it back. Falls back to <body> when the document has no head.
// CSS content is sanitized to prevent breaking out of the style block.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) (string, error) {
	if cssContent == "" {
		return htmlContent, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInject, err)
	}

	target := findElement(doc, atom.Head)
	if target == nil {
		target = findElement(doc, atom.Body)
	}
	if target == nil {
		return "", fmt.Errorf("%w: document has no head or body", ErrInject)
	}

	style := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Style,
		Data:     "style",
	}
	style.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: sanitizeCSS(cssContent),
	})

	if target.FirstChild != nil {
		target.InsertBefore(style, target.FirstChild)
	} else {
		target.AppendChild(style)
	}

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInject, err)
	}
	return buf.String(), nil
}

// findElement returns the first element with the given atom, depth-first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// sanitizeCSS escapes sequences that could close a <style> block prematurely.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
