// Package nbformat decodes Jupyter notebook documents (nbformat v4).
//
// The interchange format is JSON with two quirks this package absorbs for
// callers: text fields may be either a single string or an array of line
// strings (MultilineString), and output data is a MIME-keyed bundle whose
// values have per-MIME shapes (MimeBundle).
package nbformat

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MinSupportedVersion is the lowest nbformat major version this package reads.
// Version 3 notebooks use a different cell schema and must be upgraded first.
const MinSupportedVersion = 4

// Cell type constants.
const (
	CellCode     = "code"
	CellMarkdown = "markdown"
	CellRaw      = "raw"
)

// Output type constants.
const (
	OutputStream        = "stream"
	OutputDisplayData   = "display_data"
	OutputExecuteResult = "execute_result"
	OutputError         = "error"
)

// Sentinel errors for notebook decoding.
var (
	ErrParse              = errors.New("failed to parse notebook")
	ErrUnsupportedVersion = errors.New("unsupported nbformat version")
)

// Notebook is a parsed notebook document.
type Notebook struct {
	Cells         []Cell   `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Metadata holds the notebook-level metadata fields the renderer needs.
type Metadata struct {
	KernelSpec   KernelSpec   `json:"kernelspec"`
	LanguageInfo LanguageInfo `json:"language_info"`
	Title        string       `json:"title"`
}

// KernelSpec identifies the kernel the notebook was authored against.
type KernelSpec struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
}

// LanguageInfo describes the notebook's source language.
type LanguageInfo struct {
	Name          string `json:"name"`
	FileExtension string `json:"file_extension"`
}

// Cell is a single notebook cell.
type Cell struct {
	Type           string          `json:"cell_type"`
	Source         MultilineString `json:"source"`
	Outputs        []Output        `json:"outputs"`
	ExecutionCount *int            `json:"execution_count"`
}

// Output is one output attached to a code cell.
type Output struct {
	Type           string          `json:"output_type"`
	Name           string          `json:"name"`      // stream: "stdout" or "stderr"
	Text           MultilineString `json:"text"`      // stream
	Data           MimeBundle      `json:"data"`      // display_data, execute_result
	EName          string          `json:"ename"`     // error
	EValue         string          `json:"evalue"`    // error
	Traceback      []string        `json:"traceback"` // error
	ExecutionCount *int            `json:"execution_count"`
}

// MultilineString decodes a JSON value that is either a string or an array
// of strings, joining array form without inserting separators (each element
// already carries its trailing newline in the interchange format).
type MultilineString string

// UnmarshalJSON implements json.Unmarshaler.
func (m *MultilineString) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = MultilineString(single)
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("multiline string: %w", err)
	}
	*m = MultilineString(strings.Join(lines, ""))
	return nil
}

// String returns the joined text.
func (m MultilineString) String() string { return string(m) }

// MimeBundle maps MIME types to their raw JSON payloads.
// Text-like payloads are strings or line arrays; binary payloads are
// base64-encoded strings; application/json is arbitrary JSON.
type MimeBundle map[string]json.RawMessage

// Has reports whether the bundle contains the given MIME type.
func (b MimeBundle) Has(mime string) bool {
	_, ok := b[mime]
	return ok
}

// Text decodes a text-like payload (string or line array) for the MIME type.
func (b MimeBundle) Text(mime string) (string, error) {
	raw, ok := b[mime]
	if !ok {
		return "", fmt.Errorf("%w: no %q payload", ErrParse, mime)
	}

	var m MultilineString
	if err := m.UnmarshalJSON(raw); err == nil {
		return string(m), nil
	}

	// application/json and friends: re-serialize the raw value
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: decoding %q: %v", ErrParse, mime, err)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding %q: %v", ErrParse, mime, err)
	}
	return string(pretty), nil
}

// Binary decodes a base64-encoded payload for the MIME type.
// Jupyter wraps base64 data at 76 columns; embedded newlines are tolerated.
func (b MimeBundle) Binary(mime string) ([]byte, error) {
	text, err := b.Text(mime)
	if err != nil {
		return nil, err
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, text)

	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: base64 %q: %v", ErrParse, mime, err)
	}
	return decoded, nil
}

// Language returns the notebook's source language name, falling back through
// language_info, kernelspec, and finally "python" (the dominant default).
func (n *Notebook) Language() string {
	if n.Metadata.LanguageInfo.Name != "" {
		return n.Metadata.LanguageInfo.Name
	}
	if n.Metadata.KernelSpec.Language != "" {
		return n.Metadata.KernelSpec.Language
	}
	return "python"
}
