package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every supported file under the given paths, translates it
	// into the format-agnostic model and validates the result.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// MultiLoader fans Load out to several format loaders and merges their models.
type MultiLoader struct {
	loaders []Loader
}

// NewMultiLoader combines loaders. Each one picks the files it understands
// from the shared paths.
func NewMultiLoader(loaders ...Loader) *MultiLoader {
	return &MultiLoader{loaders: loaders}
}

// Load runs every loader over paths, merges the results in loader order and
// validates the merged model. A node type declared in two formats is an
// ErrInvalidSpec.
func (m *MultiLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	merged := NewModel()
	for _, l := range m.loaders {
		model, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		if err := merged.Merge(model); err != nil {
			return nil, err
		}
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
