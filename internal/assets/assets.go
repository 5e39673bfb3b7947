package assets

// ReportStyleName names the fixed stylesheet injected into every document
// head after rendering, independent of the selected template.
const ReportStyleName = "report"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a stylesheet by name using the default embedded loader.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadShell loads a document shell by name using the default embedded loader.
// The name should not include the .html extension or path components.
func LoadShell(name string) (string, error) {
	return defaultLoader.LoadShell(name)
}
