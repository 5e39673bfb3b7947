package pipeline

import "regexp"

// Precompiled patterns for terminal escape handling.
var (
	// CSI sequences: colors, cursor movement (ESC [ ... final byte)
	csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

	// Bare two-byte escapes (ESC c, ESC ( B, ...)
	escPattern = regexp.MustCompile(`\x1b[@-_][0-9;]*`)
)

// StripANSI removes terminal escape sequences from stream and traceback text.
// Kernels colorize tracebacks and progress bars; the escapes are noise in
// HTML output.
func StripANSI(text string) string {
	text = csiPattern.ReplaceAllString(text, "")
	return escPattern.ReplaceAllString(text, "")
}
