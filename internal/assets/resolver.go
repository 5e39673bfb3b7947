package assets

import "errors"

// AssetResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the asset is not found in the custom location.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyle tries the custom loader first, falling back to embedded assets
// when the style is absent from the custom location.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	if r.custom != nil {
		content, err := r.custom.LoadStyle(name)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrStyleNotFound) {
			return "", err
		}
	}
	return r.embedded.LoadStyle(name)
}

// LoadShell tries the custom loader first, falling back to embedded assets
// when the shell is absent from the custom location.
func (r *AssetResolver) LoadShell(name string) (string, error) {
	if r.custom != nil {
		content, err := r.custom.LoadShell(name)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrShellNotFound) {
			return "", err
		}
	}
	return r.embedded.LoadShell(name)
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
