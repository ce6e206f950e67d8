package dynamic

import (
	"context"
	"fmt"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
)

// Recorder receives counters from the managers.
type Recorder interface {
	// ObserveAutogrow counts rows added ("grow") or removed ("shrink").
	ObserveAutogrow(op string, rows int)
	// ObserveComboRebind counts rebuilds of a combo's socket set.
	ObserveComboRebind(selector string)
	// ObserveMatchType counts group recomputations by result.
	ObserveMatchType(result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAutogrow(string, int) {}
func (nopRecorder) ObserveComboRebind(string)   {}
func (nopRecorder) ObserveMatchType(string)     {}

// Engine installs and drives the dynamic socket managers.
type Engine struct {
	rec Recorder
}

// NewEngine returns an engine reporting to rec. A nil rec disables counters.
func NewEngine(rec Recorder) *Engine {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Engine{rec: rec}
}

// Apply installs the manager for input's dynamic kind on node. It reports
// whether the kind was recognised; unrecognised kinds are left to the caller.
// A spec failing validation returns config.ErrInvalidSpec and leaves the node
// untouched.
func (e *Engine) Apply(ctx context.Context, g *graph.Graph, node *graph.Node, input *config.InputDefinition) (bool, error) {
	if input == nil || input.Dynamic == nil {
		return false, nil
	}
	kind := input.Dynamic.Kind
	switch kind {
	case config.KindMatchType, config.KindAutogrow, config.KindDynamicCombo:
	default:
		return false, nil
	}

	if err := config.ValidateDynamic(input); err != nil {
		return true, fmt.Errorf("input %q: %w", input.Name, err)
	}

	ctx = ctxlog.With(ctx, "node", node.ID, "input", input.Name, "dynamic_kind", string(kind))
	err := g.Atomically(func() error {
		switch kind {
		case config.KindMatchType:
			spec := input.Dynamic.MatchType
			return e.RegisterMatchSlot(ctx, g, node, spec.Group, input.Name, spec.Allowed)
		case config.KindAutogrow:
			return e.InitAutogrow(ctx, g, node, input.Name, input.Dynamic.Autogrow)
		default:
			return e.BindCombo(ctx, g, node, input.Name, input.Widget, input.Dynamic.Combo)
		}
	})
	if err != nil {
		return true, err
	}
	ctxlog.FromContext(ctx).Debug("Dynamic input applied.")
	return true, nil
}
