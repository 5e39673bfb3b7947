// Package kernel executes notebooks against a language kernel by driving the
// external jupyter binary, then re-reads the executed document.
package kernel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-nb2html/internal/nbformat"
)

// Execution defaults.
const (
	// DefaultTimeout bounds a full notebook execution.
	DefaultTimeout = 600 * time.Second

	// DefaultKernel is the kernelspec used when the caller names none.
	DefaultKernel = "python3"
)

// Sentinel errors for execution failures.
var (
	ErrExecution      = errors.New("notebook execution failed")
	ErrJupyterMissing = errors.New("jupyter binary not found")
)

// Executor abstracts notebook execution to allow fakes in tests.
type Executor interface {
	Execute(ctx context.Context, notebookPath string) (*nbformat.Notebook, error)
}

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run executes the command with the given working directory.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		return "", "", fmt.Errorf("%w: %v", ErrJupyterMissing, err)
	}
	return stdout.String(), stderr.String(), err
}

// JupyterExecutor runs notebooks through `jupyter nbconvert --execute`.
// The executed document is emitted on stdout and parsed back, leaving the
// input file untouched.
type JupyterExecutor struct {
	Runner  CommandRunner
	Timeout time.Duration
	Kernel  string
}

// NewJupyterExecutor creates an executor with a real command runner.
// Zero values fall back to DefaultTimeout and DefaultKernel.
func NewJupyterExecutor(timeout time.Duration, kernelName string) *JupyterExecutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if kernelName == "" {
		kernelName = DefaultKernel
	}
	return &JupyterExecutor{
		Runner:  &ExecRunner{},
		Timeout: timeout,
		Kernel:  kernelName,
	}
}

// Execute runs all code cells against a fresh kernel, bounded by Timeout.
// The working directory is the notebook's directory so relative data paths
// inside the notebook resolve as they do in an interactive session.
func (e *JupyterExecutor) Execute(ctx context.Context, notebookPath string) (*nbformat.Notebook, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	dir := filepath.Dir(notebookPath)
	args := []string{
		"nbconvert",
		"--to", "notebook",
		"--execute",
		"--stdout",
		fmt.Sprintf("--ExecutePreprocessor.timeout=%d", int(e.Timeout.Seconds())),
		"--ExecutePreprocessor.kernel_name=" + e.Kernel,
		filepath.Base(notebookPath),
	}

	stdout, stderr, err := e.Runner.Run(ctx, dir, "jupyter", args...)
	if err != nil {
		if errors.Is(err, ErrJupyterMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrExecution, firstLine(stderr), err)
	}

	nb, err := nbformat.Parse([]byte(stdout))
	if err != nil {
		return nil, fmt.Errorf("%w: reading executed document: %v", ErrExecution, err)
	}
	return nb, nil
}

// firstLine trims stderr to its first non-empty line for error messages.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return "no diagnostic output"
}
