package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds rendering-related flags.
type renderFlags struct {
	template      string
	noInput       bool
	noEmbedImages bool
}

// executeFlags holds kernel execution flags.
type executeFlags struct {
	execute bool
	timeout string
	kernel  string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	workers   int
	recursive bool
	assetPath string
	render    renderFlags
	execute   executeFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.template, "template", "", "report layout: classic, lab, reveal")
	fs.BoolVar(&f.noInput, "no-input", false, "hide code cell inputs in the report")
	fs.BoolVar(&f.noEmbedImages, "no-embed-images", false, "write images to a sidecar directory instead of inlining")
}

// addExecuteFlags adds kernel execution flags to a FlagSet.
func addExecuteFlags(fs *flag.FlagSet, f *executeFlags) {
	fs.BoolVar(&f.execute, "execute", false, "run the notebook before rendering")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "kernel execution timeout (e.g., 30s, 10m)")
	fs.StringVar(&f.kernel, "kernel", "", "kernelspec name for execution")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "descend into subdirectories")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom style and template directory")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addExecuteFlags(fs, &f.execute)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
