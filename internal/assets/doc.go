// Package assets provides the HTML document shells and stylesheets used to
// render notebook reports. Assets can be loaded from embedded files or from
// a custom filesystem path that overrides them.
package assets
