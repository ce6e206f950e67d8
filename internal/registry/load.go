package registry

import (
	"context"
	"fmt"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
)

// Load reads definitions through loader, registers every node type and
// returns the merged model so callers can reach its scenario.
func (r *Registry) Load(ctx context.Context, loader config.Loader, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading definitions...", "paths", paths)

	model, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	if len(model.Nodes) == 0 {
		logger.Warn("No node definitions found in paths.", "paths", paths)
	}
	for name := range model.Nodes {
		if _, exists := r.definitions[name]; exists {
			return nil, fmt.Errorf("%w: node %q is already registered", config.ErrInvalidSpec, name)
		}
	}
	r.PopulateDefinitionsFromModel(model)

	logger.Info("Registry loaded successfully.", "node_definitions_loaded", len(model.Nodes))
	return model, nil
}
