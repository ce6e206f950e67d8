package dynamic

import (
	"context"
	"fmt"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/slotpath"
	"github.com/vk/socketgrid/internal/types"
)

// ComboType is the socket type of a combo selector.
var ComboType = types.Parse("COMBO")

func comboKey(selector string) string {
	return "combo:" + selector
}

// comboBinding tracks the sockets installed for a selector's current value.
type comboBinding struct {
	Selector  string
	Spec      *config.ComboSpec
	Installed []string
}

func (b *comboBinding) Clone() graph.State {
	return &comboBinding{Selector: b.Selector, Spec: b.Spec, Installed: append([]string(nil), b.Installed...)}
}

// BindCombo adds the selector input and its combo widget, then installs the
// sockets of the initial value. A nil initial value selects the first option;
// "" selects nothing.
func (e *Engine) BindCombo(ctx context.Context, g *graph.Graph, node *graph.Node, selector string, initial any, spec *config.ComboSpec) error {
	if spec == nil || len(spec.Options) == 0 {
		return fmt.Errorf("%w: combo %q declares no options", config.ErrInvalidSpec, selector)
	}
	value := initial
	if value == nil {
		value = spec.Options[0].Key
	}
	if key, ok := value.(string); !ok || (key != "" && spec.Option(key) == nil) {
		return fmt.Errorf("%w: default %v of %q is not one of %v", config.ErrInvalidSpec, initial, selector, spec.Keys())
	}

	if _, err := g.AddInput(node.ID, &graph.InputSlot{Name: selector, Type: ComboType, Widget: selector}); err != nil {
		return err
	}
	if err := g.AddWidget(node.ID, &graph.Widget{Name: selector, Value: value, Options: spec.Keys()}); err != nil {
		return err
	}
	b := &comboBinding{Selector: selector, Spec: spec}
	g.SetState(node.ID, comboKey(selector), b)

	node.OnWidgetChange(func(ctx context.Context, g *graph.Graph, ev graph.WidgetEvent) error {
		if ev.Widget.Name != selector {
			return nil
		}
		return e.Rebind(ctx, g, ev.Node, selector, ev.Widget.Value)
	})
	return e.Rebind(ctx, g, node, selector, value)
}

// Rebind replaces the installed sockets of selector with the ones declared
// for value. Live links move to a same-named replacement when the types
// still connect and are dropped otherwise.
func (e *Engine) Rebind(ctx context.Context, g *graph.Graph, node *graph.Node, selector string, value any) error {
	st, ok := g.State(node.ID, comboKey(selector))
	if !ok {
		return fmt.Errorf("%w: combo %q not bound on node %d", graph.ErrInvariant, selector, node.ID)
	}
	b := st.(*comboBinding)

	key, _ := value.(string)
	var option *config.ComboOption
	if key != "" {
		if option = b.Spec.Option(key); option == nil {
			return fmt.Errorf("%w: %q is not an option of %q", graph.ErrInvalidValue, key, selector)
		}
	}
	if node.InputIndex(selector) < 0 {
		return fmt.Errorf("%w: combo selector %q has no socket on node %d", graph.ErrInvariant, selector, node.ID)
	}

	// Tear down: park live links, then remove the sockets and their widgets.
	parked := make(map[string]graph.LinkID)
	for _, name := range b.Installed {
		in := node.Input(name)
		if in == nil {
			return fmt.Errorf("%w: combo slot %q not found on node %d", graph.ErrInvariant, name, node.ID)
		}
		if in.Connected() {
			parked[name] = in.Link
			if err := g.DetachLink(in.Link); err != nil {
				return err
			}
		}
	}
	for _, name := range b.Installed {
		if _, err := g.RemoveInputs(node.ID, node.InputIndex(name), 1); err != nil {
			return err
		}
		if err := g.RemoveWidget(node.ID, name); err != nil {
			return err
		}
	}
	previous := b.Installed
	b.Installed = nil

	// Build: insert the new sockets right after the selector.
	if option != nil {
		slots := make([]*graph.InputSlot, 0, len(option.Inputs))
		for _, tmpl := range option.Inputs {
			name := slotpath.Join(selector, tmpl.Name)
			slot := &graph.InputSlot{Name: name, Label: tmpl.Name, Type: tmpl.Type, Optional: tmpl.Optional}
			if tmpl.Widget != nil {
				if err := g.AddWidget(node.ID, &graph.Widget{Name: name, Value: tmpl.Widget}); err != nil {
					return err
				}
				slot.Widget = name
			}
			slots = append(slots, slot)
			b.Installed = append(b.Installed, name)
		}
		at := node.InputIndex(selector)
		if at < 0 {
			return fmt.Errorf("%w: combo selector %q has no socket on node %d", graph.ErrInvariant, selector, node.ID)
		}
		if err := g.InsertInputs(node.ID, at+1, slots...); err != nil {
			return err
		}
	}

	// Migrate parked links in their old order.
	var moved, dropped int
	for _, name := range previous {
		id, ok := parked[name]
		if !ok {
			continue
		}
		link, ok := g.Link(id)
		if !ok {
			return fmt.Errorf("%w: parked link %d vanished", graph.ErrInvariant, id)
		}
		if idx := node.InputIndex(name); idx >= 0 && types.IsValidConnection(link.Type, node.Inputs[idx].Type) {
			if err := g.AttachLink(id, node.ID, idx); err != nil {
				return err
			}
			moved++
			continue
		}
		g.RemoveLink(id)
		dropped++
	}

	node.Size = node.ComputeSize()
	e.rec.ObserveComboRebind(selector)
	ctxlog.FromContext(ctx).Debug("Combo sockets rebound.", "selector", selector, "value", key, "sockets", len(b.Installed), "links_moved", moved, "links_dropped", dropped)
	return nil
}

// Installed returns the socket names currently bound to a selector.
func Installed(g *graph.Graph, node *graph.Node, selector string) ([]string, error) {
	st, ok := g.State(node.ID, comboKey(selector))
	if !ok {
		return nil, fmt.Errorf("%w: combo %q not bound on node %d", graph.ErrInvariant, selector, node.ID)
	}
	return append([]string(nil), st.(*comboBinding).Installed...), nil
}
