package nb2html

import (
	"errors"

	"github.com/alnah/go-nb2html/internal/kernel"
)

// Sentinel errors for library operations.
var (
	// ErrNotFound indicates the input path does not exist.
	ErrNotFound = errors.New("input path not found")

	// ErrInvalidFormat indicates the input file is not a notebook document.
	ErrInvalidFormat = errors.New("file must have .ipynb extension")

	// ErrNotADirectory indicates a batch input root is missing or not a directory.
	ErrNotADirectory = errors.New("input directory not found")

	// ErrConversion wraps any failure during rendering or writing of a
	// single document.
	ErrConversion = errors.New("conversion failed")

	// Option validation errors.
	ErrInvalidTemplate = errors.New("invalid template")
	ErrInvalidKernel   = errors.New("invalid kernel name")
)

// ErrExecution indicates kernel execution failed. It is never returned by
// ConvertFile directly: execution failure is non-fatal and surfaces as
// Result.ExecErr, with conversion proceeding on the pre-execution outputs.
var ErrExecution = kernel.ErrExecution
