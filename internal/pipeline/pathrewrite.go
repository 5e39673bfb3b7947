package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrRewrite indicates the resource path post-pass failed.
var ErrRewrite = errors.New("resource path rewrite failed")

// RewriteResourcePaths points image references at the side-car directory the
// extracted outputs are written to. The renderer emits bare resource names
// (it cannot know the final output location); this DOM pass prefixes every
// img src that names a known resource with dir, using forward slashes so the
// reference stays a valid relative URL on every platform.
//
// Srcs that do not name a resource (data: URIs, external URLs, author-written
// markup inside HTML outputs) are left untouched.
func RewriteResourcePaths(ctx context.Context, htmlContent, dir string, resources map[string][]byte) (string, error) {
	if dir == "" || len(resources) == 0 {
		return htmlContent, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRewrite, err)
	}

	rewriteImgSrcs(doc, dir, resources)

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRewrite, err)
	}
	return buf.String(), nil
}

// rewriteImgSrcs walks the tree and prefixes matching img srcs in place.
func rewriteImgSrcs(n *html.Node, dir string, resources map[string][]byte) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Namespace != "" || attr.Key != "src" {
				continue
			}
			if _, ok := resources[attr.Val]; ok {
				n.Attr[i].Val = dir + "/" + attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteImgSrcs(c, dir, resources)
	}
}
