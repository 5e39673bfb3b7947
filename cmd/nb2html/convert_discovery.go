package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileToConvert represents a single notebook to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

const (
	notebookExtension = ".ipynb"
	checkpointDirName = ".ipynb_checkpoints"
	htmlExtension     = ".html"
)

// discoverFiles finds all notebooks to convert and reports whether the input
// named a directory (batch mode).
// A file input yields a single entry; a directory input is scanned for
// .ipynb files, descending into subdirectories when recursive is set.
func discoverFiles(inputPath, outputDir string, recursive bool) ([]FileToConvert, bool, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, false, err
	}

	if !info.IsDir() {
		if err := validateNotebookExtension(inputPath); err != nil {
			return nil, false, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, false, nil
	}

	// A .html destination names a single file; every notebook in the batch
	// would resolve to it and silently overwrite the others.
	if strings.EqualFold(filepath.Ext(outputDir), htmlExtension) {
		return nil, true, fmt.Errorf("%w: %s is a directory, %s names a file", ErrOutputMismatch, inputPath, outputDir)
	}

	var files []FileToConvert
	if recursive {
		err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == checkpointDirName {
					return filepath.SkipDir
				}
				return nil
			}
			if !isNotebook(path) {
				return nil
			}
			files = append(files, FileToConvert{
				InputPath:  path,
				OutputPath: resolveOutputPath(path, outputDir, inputPath),
			})
			return nil
		})
		return files, true, err
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return nil, true, err
	}
	for _, e := range entries {
		if e.IsDir() || !isNotebook(e.Name()) {
			continue
		}
		path := filepath.Join(inputPath, e.Name())
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outputDir, inputPath),
		})
	}
	return files, true, nil
}

// resolveOutputPath determines the HTML output path for a notebook.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+htmlExtension)
	}

	// An explicit .html destination names the output file directly.
	if strings.EqualFold(filepath.Ext(outputDir), htmlExtension) {
		return outputDir
	}

	// Mirror the input's relative layout under the output directory.
	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+htmlExtension)
		}
	}

	return filepath.Join(outputDir, base+htmlExtension)
}

// isNotebook reports whether the path has a notebook extension.
func isNotebook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), notebookExtension)
}

// validateNotebookExtension checks that the file has a .ipynb extension.
func validateNotebookExtension(path string) error {
	if !isNotebook(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}
