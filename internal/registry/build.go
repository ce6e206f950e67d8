package registry

import (
	"context"
	"fmt"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
)

// ErrUnknownType is returned by Build for a node type with no definition.
var ErrUnknownType = fmt.Errorf("%w: unknown node type", config.ErrInvalidSpec)

// Build adds a node of the given type to g. Outputs are created first, then
// inputs in declared order; dynamic inputs go through the engine and inputs
// of an unrecognised dynamic kind fall back to a plain socket. Outputs bound
// to a match group are registered last, once the group exists. A failure
// leaves g unchanged.
func (r *Registry) Build(ctx context.Context, g *graph.Graph, nodeType string) (*graph.Node, error) {
	def, ok := r.definitions[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, nodeType)
	}
	logger := ctxlog.FromContext(ctx)

	var node *graph.Node
	err := g.Atomically(func() error {
		node = g.AddNode(ctx, def.Type)
		for _, out := range def.Outputs {
			if _, err := g.AddOutput(node.ID, &graph.OutputSlot{Name: out.Name, Type: out.Type}); err != nil {
				return err
			}
		}
		for _, in := range def.Inputs {
			handled, err := r.engine.Apply(ctx, g, node, in)
			if err != nil {
				return err
			}
			if handled {
				continue
			}
			if in.Dynamic != nil {
				logger.Warn("Unrecognised dynamic kind, adding a plain input.", "type", def.Type, "input", in.Name, "kind", string(in.Dynamic.Kind))
			}
			if err := addPlainInput(g, node, in); err != nil {
				return err
			}
		}
		for _, out := range def.Outputs {
			if out.MatchGroup == "" {
				continue
			}
			if err := r.engine.RegisterMatchOutput(ctx, g, node, out.MatchGroup, out.Name); err != nil {
				return err
			}
		}
		node.Size = node.ComputeSize()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building node %q: %w", nodeType, err)
	}
	logger.Debug("Node built.", "type", def.Type, "node", node.ID, "inputs", len(node.Inputs), "outputs", len(node.Outputs))
	return node, nil
}

func addPlainInput(g *graph.Graph, node *graph.Node, in *config.InputDefinition) error {
	slot := &graph.InputSlot{Name: in.Name, Type: in.Type, Optional: in.Optional}
	if in.Widget != nil {
		if err := g.AddWidget(node.ID, &graph.Widget{Name: in.Name, Value: in.Widget}); err != nil {
			return err
		}
		slot.Widget = in.Name
	}
	_, err := g.AddInput(node.ID, slot)
	return err
}
