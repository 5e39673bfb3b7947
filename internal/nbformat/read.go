package nbformat

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxNotebookSize caps notebook input to prevent memory exhaustion (256MB).
// Notebooks with large embedded figures routinely reach tens of megabytes.
const maxNotebookSize = 256 << 20

// Parse decodes a notebook from raw JSON.
func Parse(data []byte) (*Notebook, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrParse)
	}
	if len(data) > maxNotebookSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrParse, maxNotebookSize)
	}

	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if nb.NBFormat < MinSupportedVersion {
		return nil, fmt.Errorf("%w: nbformat %d (minimum %d)", ErrUnsupportedVersion, nb.NBFormat, MinSupportedVersion)
	}

	return &nb, nil
}

// Read decodes a notebook from a reader.
func Read(r io.Reader) (*Notebook, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxNotebookSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return Parse(data)
}

// ReadFile decodes a notebook from a file on disk.
func ReadFile(path string) (*Notebook, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-supplied notebook path
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
