package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// Output formatting
// ----------------------------------------------------------------------------

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		result       *doctorResult
		wantContains []string
		wantNot      []string
	}{
		{
			name: "ready with jupyter",
			result: &doctorResult{
				Status: "ready",
				Jupyter: jupyterInfo{
					Found:   true,
					Path:    "/usr/bin/jupyter",
					Version: "5.7.2",
				},
				Kernels: []string{"python3", "ir"},
				Env:     envInfo{OS: "linux", Arch: "amd64"},
				System:  systemInfo{TempWritable: true},
			},
			wantContains: []string{
				"[OK] Found at /usr/bin/jupyter",
				"[OK] Version: 5.7.2",
				"[OK] Kernels: python3, ir",
				"[OK] Platform: linux/amd64",
				"[OK] Temp directory: writable",
				"Status: Ready to convert",
			},
			wantNot: []string{"[WARN]", "[ERROR]"},
		},
		{
			name: "jupyter missing is a warning",
			result: &doctorResult{
				Status:   "warnings",
				Env:      envInfo{OS: "linux", Arch: "arm64"},
				System:   systemInfo{TempWritable: true},
				Warnings: []string{"jupyter not found on PATH. Install Jupyter to use --execute"},
			},
			wantContains: []string{
				"[WARN] Not found (only needed for --execute)",
				"[WARN] jupyter not found on PATH",
				"Status: Ready with warnings",
			},
		},
		{
			name: "no kernels installed",
			result: &doctorResult{
				Status:  "warnings",
				Jupyter: jupyterInfo{Found: true, Path: "/usr/bin/jupyter"},
				Env:     envInfo{OS: "linux", Arch: "amd64"},
				System:  systemInfo{TempWritable: true},
			},
			wantContains: []string{"[WARN] No kernels installed"},
		},
		{
			name: "container and ci detected",
			result: &doctorResult{
				Status: "ready",
				Env: envInfo{
					OS:            "linux",
					Arch:          "amd64",
					Container:     true,
					ContainerHint: "/.dockerenv",
					CI:            true,
				},
				System: systemInfo{TempWritable: true},
			},
			wantContains: []string{
				"[OK] Container: detected (/.dockerenv)",
				"[OK] CI: detected",
			},
		},
		{
			name: "temp not writable is an error",
			result: &doctorResult{
				Status: "errors",
				Env:    envInfo{OS: "linux", Arch: "amd64"},
				Errors: []string{"Temp directory not writable: /tmp"},
			},
			wantContains: []string{
				"[ERROR] Temp directory: not writable",
				"[ERROR] Temp directory not writable: /tmp",
				"Status: Not ready (see errors above)",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			out := buf.String()

			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(out, not) {
					t.Errorf("output should not contain %q:\n%s", not, out)
				}
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Command wiring
// ----------------------------------------------------------------------------

func TestRunDoctorCmdJSON(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &stderr}

	code := runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}

	switch result.Status {
	case "ready", "warnings":
		if code != ExitSuccess {
			t.Errorf("runDoctorCmd() = %d, want %d for status %q", code, ExitSuccess, result.Status)
		}
	case "errors":
		if code != ExitGeneral {
			t.Errorf("runDoctorCmd() = %d, want %d for status %q", code, ExitGeneral, result.Status)
		}
	default:
		t.Errorf("unexpected status %q", result.Status)
	}

	if result.Env.OS == "" || result.Env.Arch == "" {
		t.Errorf("environment info not populated: %+v", result.Env)
	}
}

func TestRunDoctorCmdText(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &stderr}

	runDoctorCmd(nil, env)

	out := stdout.String()
	for _, want := range []string{"nb2html doctor", "Jupyter", "Environment", "System", "Status:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func TestFirstOutputLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single line", input: "5.7.2\n", want: "5.7.2"},
		{name: "leading blank lines", input: "\n\n  jupyter core 5.7.2\n", want: "jupyter core 5.7.2"},
		{name: "multiline keeps first", input: "first\nsecond\n", want: "first"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "  \n\t\n", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := firstOutputLine(tt.input); got != tt.want {
				t.Errorf("firstOutputLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
