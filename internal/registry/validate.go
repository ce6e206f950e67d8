package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
)

// ValidateRegistry builds every registered definition on a scratch graph and
// reports all that fail. It also warns about plain inputs typed as the
// wildcard, which accept any connection.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, nodeType := range r.Types() {
		def := r.definitions[nodeType]
		if err := config.ValidateNode(def); err != nil {
			errs = append(errs, fmt.Sprintf("node '%s': %v", nodeType, err))
			continue
		}
		for _, in := range def.Inputs {
			if in.Dynamic == nil && in.Type.IsWildcard() {
				logger.Warn("Definition has an input with type '*', which disables type checking for it.", "type", nodeType, "input", in.Name)
			}
		}

		scratch := graph.New()
		node, err := r.Build(ctx, scratch, nodeType)
		if err != nil {
			errs = append(errs, fmt.Sprintf("node '%s': %v", nodeType, err))
			continue
		}
		if err := scratch.CheckIntegrity(); err != nil {
			errs = append(errs, fmt.Sprintf("node '%s': built node %d fails integrity: %v", nodeType, node.ID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: registry validation failed:\n- %s", config.ErrInvalidSpec, strings.Join(errs, "\n- "))
	}
	return nil
}
