package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	nb2html "github.com/alnah/go-nb2html"
	"github.com/alnah/go-nb2html/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidExtension   = errors.New("file must have .ipynb extension")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrOutputMismatch     = errors.New("output names a file but input is a directory")
)

// newPool creates the converter pool. Swapped in tests to stub conversions.
var newPool = func(size int, opts ...nb2html.Option) Pool {
	return &converterPool{inner: nb2html.NewConverterPool(size, opts...)}
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	// Load configuration
	cfg := config.DefaultConfig()
	var err error
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Merge CLI flags into config (CLI wins)
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}

	// Resolve input path
	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	// Resolve output destination
	outputPath := resolveOutputDir(flags.output, cfg)

	// Discover notebooks to convert
	files, batch, err := discoverFiles(inputPath, outputPath, cfg.Input.Recursive)
	if err != nil {
		if errors.Is(err, ErrOutputMismatch) {
			return err
		}
		return fmt.Errorf("discovering files: %w", err)
	}

	// An empty batch is not a failure: report the zero count and stop.
	if len(files) == 0 {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "No notebooks found in %s\n", inputPath)
		}
		return nil
	}

	// Build converter options from the merged config
	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	poolSize := nb2html.ResolvePoolSize(flags.workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}
	pool := newPool(poolSize, opts...)

	// Convert files
	results := convertBatch(ctx, pool, files)

	// Print results
	failedCount := printResultsWithWriter(results, batch, flags.common.quiet, flags.common.verbose, env)

	// A single-file failure is a top-level error; partial batch failures
	// are reported per file and the batch still succeeds.
	if failedCount > 0 && !batch {
		return results[0].Err
	}

	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.render.template != "" {
		cfg.Convert.Template = flags.render.template
	}
	if flags.render.noInput {
		v := false
		cfg.Convert.IncludeInput = &v
	}
	if flags.render.noEmbedImages {
		v := false
		cfg.Convert.EmbedImages = &v
	}

	if flags.execute.execute {
		cfg.Execute.Enabled = true
	}
	if flags.execute.timeout != "" {
		d, err := time.ParseDuration(flags.execute.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, flags.execute.timeout)
		}
		cfg.Execute.TimeoutSeconds = int(d.Seconds())
	}
	if flags.execute.kernel != "" {
		cfg.Execute.Kernel = flags.execute.kernel
	}

	if flags.recursive {
		cfg.Input.Recursive = true
	}
	if flags.assetPath != "" {
		cfg.Assets.BasePath = flags.assetPath
	}

	return nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output destination from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// buildOptions translates the merged config into converter options.
func buildOptions(cfg *config.Config) ([]nb2html.Option, error) {
	var opts []nb2html.Option

	if cfg.Convert.Template != "" {
		kind, err := nb2html.ParseTemplateKind(cfg.Convert.Template)
		if err != nil {
			return nil, err
		}
		opts = append(opts, nb2html.WithTemplate(kind))
	}
	if cfg.Convert.EmbedImages != nil {
		opts = append(opts, nb2html.WithEmbedImages(*cfg.Convert.EmbedImages))
	}
	if cfg.Convert.IncludeInput != nil {
		opts = append(opts, nb2html.WithIncludeInput(*cfg.Convert.IncludeInput))
	}

	if cfg.Execute.Enabled {
		opts = append(opts, nb2html.WithExecution(true))
	}
	if cfg.Execute.TimeoutSeconds > 0 {
		opts = append(opts, nb2html.WithTimeout(time.Duration(cfg.Execute.TimeoutSeconds)*time.Second))
	}
	if cfg.Execute.Kernel != "" {
		opts = append(opts, nb2html.WithKernel(cfg.Execute.Kernel))
	}

	if cfg.Assets.BasePath != "" {
		opts = append(opts, nb2html.WithAssetPath(cfg.Assets.BasePath))
	}

	return opts, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > nb2html.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, nb2html.MaxPoolSize)
	}
	return nil
}
