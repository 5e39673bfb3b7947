package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates path (and parents) with placeholder content.
func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("creating directories: %v", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ---------------------------------------------------------------------------
// TestDiscoverFiles - Input enumeration
// ---------------------------------------------------------------------------

func TestDiscoverFilesSingle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	nb := filepath.Join(dir, "analysis.ipynb")
	writeFile(t, nb)

	files, batch, err := discoverFiles(nb, "", false)
	if err != nil {
		t.Fatalf("discoverFiles() unexpected error: %v", err)
	}
	if batch {
		t.Error("a file input should not be batch mode")
	}
	if len(files) != 1 {
		t.Fatalf("len(files) = %d, want 1", len(files))
	}
	if files[0].OutputPath != filepath.Join(dir, "analysis.html") {
		t.Errorf("OutputPath = %q, want sibling analysis.html", files[0].OutputPath)
	}
}

func TestDiscoverFilesSingleErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, txt)

	if _, _, err := discoverFiles(txt, "", false); !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("discoverFiles(txt) error = %v, want ErrInvalidExtension", err)
	}
	if _, _, err := discoverFiles(filepath.Join(dir, "missing.ipynb"), "", false); err == nil {
		t.Error("discoverFiles(missing) should error")
	}
}

func TestDiscoverFilesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ipynb"))
	writeFile(t, filepath.Join(dir, "B.IPYNB")) // extension matching is case-insensitive
	writeFile(t, filepath.Join(dir, "readme.md"))
	writeFile(t, filepath.Join(dir, "nested", "c.ipynb"))
	writeFile(t, filepath.Join(dir, ".ipynb_checkpoints", "a-checkpoint.ipynb"))

	t.Run("flat", func(t *testing.T) {
		t.Parallel()

		files, batch, err := discoverFiles(dir, "", false)
		if err != nil {
			t.Fatalf("discoverFiles() unexpected error: %v", err)
		}
		if !batch {
			t.Error("a directory input should be batch mode")
		}
		if len(files) != 2 {
			t.Errorf("len(files) = %d, want 2 direct notebooks", len(files))
		}
	})

	t.Run("recursive", func(t *testing.T) {
		t.Parallel()

		files, _, err := discoverFiles(dir, "", true)
		if err != nil {
			t.Fatalf("discoverFiles() unexpected error: %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("len(files) = %d, want 3 (checkpoints skipped)", len(files))
		}
		for _, f := range files {
			if filepath.Base(filepath.Dir(f.InputPath)) == checkpointDirName {
				t.Errorf("checkpoint notebook %s should be skipped", f.InputPath)
			}
		}
	})
}

func TestDiscoverFilesDirectoryWithFileOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ipynb"))
	writeFile(t, filepath.Join(dir, "b.ipynb"))

	// Resolving both notebooks to one .html path would overwrite one of them.
	_, _, err := discoverFiles(dir, filepath.Join(dir, "report.html"), false)
	if !errors.Is(err, ErrOutputMismatch) {
		t.Errorf("discoverFiles(dir, file.html) error = %v, want ErrOutputMismatch", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolveOutputPath - Destination mapping
// ---------------------------------------------------------------------------

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		inputPath    string
		outputDir    string
		baseInputDir string
		want         string
	}{
		{
			name:      "next to source",
			inputPath: filepath.Join("data", "doc.ipynb"),
			want:      filepath.Join("data", "doc.html"),
		},
		{
			name:      "explicit html file",
			inputPath: "doc.ipynb",
			outputDir: filepath.Join("out", "report.html"),
			want:      filepath.Join("out", "report.html"),
		},
		{
			name:      "output directory",
			inputPath: filepath.Join("data", "doc.ipynb"),
			outputDir: "out",
			want:      filepath.Join("out", "doc.html"),
		},
		{
			name:         "mirrors relative structure",
			inputPath:    filepath.Join("data", "q3", "doc.ipynb"),
			outputDir:    "out",
			baseInputDir: "data",
			want:         filepath.Join("out", "q3", "doc.html"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := resolveOutputPath(tt.inputPath, tt.outputDir, tt.baseInputDir)
			if got != tt.want {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateNotebookExtension(t *testing.T) {
	t.Parallel()

	if err := validateNotebookExtension("a.ipynb"); err != nil {
		t.Errorf("validateNotebookExtension(a.ipynb) = %v, want nil", err)
	}
	if err := validateNotebookExtension("a.IPYNB"); err != nil {
		t.Errorf("validateNotebookExtension(a.IPYNB) = %v, want nil", err)
	}
	if err := validateNotebookExtension("a.txt"); !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("validateNotebookExtension(a.txt) = %v, want ErrInvalidExtension", err)
	}
}
