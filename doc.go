// Package nb2html converts Jupyter notebook documents into standalone HTML
// reports.
//
// # Quick Start
//
// Create a converter and convert a notebook:
//
//	conv, err := nb2html.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.ConvertFile(ctx, "analysis.ipynb", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("wrote", result.OutputPath)
//
// With an empty output path the HTML lands next to the input with the
// extension swapped. Result.Resources lists any side-car files written when
// image embedding is disabled.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Notebook decoding (nbformat v4 JSON)
//  2. Optional execution against a fresh kernel via the jupyter binary,
//     bounded by a timeout; failure is non-fatal (see Result.ExecErr)
//  3. Cell rendering: markdown via Goldmark, code inputs via chroma,
//     outputs by MIME priority with embedded or side-car images
//  4. Document shell templating (classic, lab, or reveal layout)
//  5. A DOM post-pass injecting the report stylesheet into the head
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := nb2html.NewConverter(
//	    nb2html.WithTemplate(nb2html.TemplateLab),
//	    nb2html.WithEmbedImages(false),
//	    nb2html.WithExecution(true),
//	    nb2html.WithTimeout(5 * time.Minute),
//	)
//
// # Batch Conversion
//
// ConvertDir converts a whole directory best-effort, skipping files that
// fail and returning the successes:
//
//	results, err := conv.ConvertDir(ctx, "notebooks/", "site/", true)
//
// For parallel batches, use ConverterPool to give each worker its own
// converter instance; a single Converter is not safe for concurrent use.
package nb2html
