// Package pipeline implements the notebook-to-HTML rendering stages.
//
// Stages are exposed as small interfaces so the public converter can be
// tested with fakes:
//
//   - Renderer: notebook cells -> HTML body + binary resource map
//   - CSSInjector: DOM pass injecting the report stylesheet into <head>
//   - RewriteResourcePaths: DOM pass pointing img srcs at the side-car dir
//
// Each stage accepts a context for cancellation and performs no I/O; reading
// notebooks and writing files belongs to the caller.
package pipeline
