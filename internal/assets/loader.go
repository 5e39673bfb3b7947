package assets

// AssetLoader defines the contract for loading stylesheets and document
// shells. Implementations may load from embedded assets or the filesystem.
type AssetLoader interface {
	// LoadStyle loads a stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadShell loads an HTML document shell by name (without .html extension).
	// Returns ErrShellNotFound if the shell doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadShell(name string) (string, error)
}
