package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	nb2html "github.com/alnah/go-nb2html"
)

// Converter is the interface for a single notebook conversion.
type Converter interface {
	ConvertFile(ctx context.Context, inputPath, outputPath string) (*nb2html.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*nb2html.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (Converter, error)
	Release(Converter)
	Size() int
}

// converterPool adapts the library pool to the CLI Pool interface.
type converterPool struct {
	inner *nb2html.ConverterPool
}

var _ Pool = (*converterPool)(nil)

func (p *converterPool) Acquire() (Converter, error) {
	return p.inner.Acquire()
}

func (p *converterPool) Release(c Converter) {
	if cc, ok := c.(*nb2html.Converter); ok {
		p.inner.Release(cc)
	}
}

func (p *converterPool) Size() int {
	return p.inner.Size()
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Resources  []string
	ExecErr    error
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       err,
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertOne(ctx, conv, files[idx])
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertOne processes a single notebook and returns the result.
func convertOne(ctx context.Context, conv Converter, f FileToConvert) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	res, err := conv.ConvertFile(ctx, f.InputPath, f.OutputPath)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}

	result.OutputPath = res.OutputPath
	result.Resources = res.Resources
	result.ExecErr = res.ExecErr
	return result
}

// printResultsWithWriter outputs conversion results using the provided writers.
// Batch mode always gets a final count, even for a batch of one.
// Returns the number of failed conversions.
func printResultsWithWriter(results []ConversionResult, batch, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		succeeded++

		// Execution failures are non-fatal; the report still renders
		// from the stale outputs, but the user should know.
		if r.ExecErr != nil {
			fmt.Fprintf(env.Stderr, "WARNING %s: %v\n", r.InputPath, r.ExecErr)
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
			for _, res := range r.Resources {
				fmt.Fprintf(env.Stdout, "  wrote %s\n", res)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && batch {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
