package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Jupyter  jupyterInfo `json:"jupyter"`
	Kernels  []string    `json:"kernels,omitempty"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// jupyterInfo holds Jupyter detection results.
type jupyterInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor()

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor() *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkJupyter(result)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkJupyter detects the jupyter binary and installed kernelspecs.
// A missing jupyter is a warning, not an error: conversion without
// --execute never shells out.
func checkJupyter(result *doctorResult) {
	path, err := exec.LookPath("jupyter")
	if err != nil {
		result.Warnings = append(result.Warnings,
			"jupyter not found on PATH. Install Jupyter to use --execute")
		return
	}

	result.Jupyter.Found = true
	result.Jupyter.Path = path

	out, err := exec.Command(path, "--version").Output()
	if err == nil {
		result.Jupyter.Version = firstOutputLine(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get jupyter version: %v", err))
	}

	result.Kernels = listKernels(path)
	if len(result.Kernels) == 0 {
		result.Warnings = append(result.Warnings,
			"no Jupyter kernels installed. Install ipykernel to use --execute")
	}
}

// kernelspecList mirrors the JSON shape of `jupyter kernelspec list --json`.
type kernelspecList struct {
	Kernelspecs map[string]json.RawMessage `json:"kernelspecs"`
}

// listKernels returns the names of installed kernelspecs, or nil on failure.
func listKernels(jupyterPath string) []string {
	out, err := exec.Command(jupyterPath, "kernelspec", "list", "--json").Output()
	if err != nil {
		return nil
	}

	var specs kernelspecList
	if err := json.Unmarshal(out, &specs); err != nil {
		return nil
	}

	names := make([]string, 0, len(specs.Kernelspecs))
	for name := range specs.Kernelspecs {
		names = append(names, name)
	}
	return names
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "nb2html-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// firstOutputLine returns the first non-empty line of command output.
func firstOutputLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "nb2html doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Jupyter")
	if r.Jupyter.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Jupyter.Path)
		if r.Jupyter.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Jupyter.Version)
		}
		if len(r.Kernels) > 0 {
			fmt.Fprintf(w, "  [OK] Kernels: %s\n", strings.Join(r.Kernels, ", "))
		} else {
			fmt.Fprintln(w, "  [WARN] No kernels installed")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found (only needed for --execute)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
