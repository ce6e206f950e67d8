package dynamic

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/types"
)

const matchTypeKey = "match_type"

type matchSlot struct {
	Name     string
	Declared types.Type
}

type matchGroup struct {
	ID      string
	Slots   []matchSlot
	Outputs []string
}

// matchState is the match-type table of one node.
type matchState struct {
	Groups    []*matchGroup
	installed bool
}

func (s *matchState) Clone() graph.State {
	c := &matchState{installed: s.installed}
	for _, grp := range s.Groups {
		c.Groups = append(c.Groups, &matchGroup{
			ID:      grp.ID,
			Slots:   append([]matchSlot(nil), grp.Slots...),
			Outputs: append([]string(nil), grp.Outputs...),
		})
	}
	return c
}

func (s *matchState) group(id string) *matchGroup {
	for _, grp := range s.Groups {
		if grp.ID == id {
			return grp
		}
	}
	return nil
}

func (s *matchState) groupOf(slot string) *matchGroup {
	for _, grp := range s.Groups {
		for _, ms := range grp.Slots {
			if ms.Name == slot {
				return grp
			}
		}
	}
	return nil
}

func matchStateOf(g *graph.Graph, id graph.NodeID) *matchState {
	if st, ok := g.State(id, matchTypeKey); ok {
		return st.(*matchState)
	}
	st := &matchState{}
	g.SetState(id, matchTypeKey, st)
	return st
}

// RegisterMatchSlot adds an input constrained by the named group. The first
// registration on a node installs the node's connection handler; later ones
// reuse it. Allowances that cannot agree with the rest of the group are an
// ErrInvalidSpec.
func (e *Engine) RegisterMatchSlot(ctx context.Context, g *graph.Graph, node *graph.Node, groupID, name string, allowed types.Type) error {
	if allowed.IsStructural() {
		return fmt.Errorf("%w: match-type slot %q cannot take structural type %s", config.ErrInvalidSpec, name, allowed)
	}
	if _, err := g.AddInput(node.ID, &graph.InputSlot{Name: name, Type: allowed}); err != nil {
		return err
	}

	st := matchStateOf(g, node.ID)
	grp := st.group(groupID)
	if grp == nil {
		grp = &matchGroup{ID: groupID}
		st.Groups = append(st.Groups, grp)
	}
	grp.Slots = append(grp.Slots, matchSlot{Name: name, Declared: allowed})

	if !st.installed {
		node.OnConnectionChange(e.onMatchTypeChange)
		st.installed = true
	}

	if err := e.recompute(ctx, g, node, grp); err != nil {
		if errors.Is(err, graph.ErrIncompatibleType) {
			return fmt.Errorf("%w: %w", config.ErrInvalidSpec, err)
		}
		return err
	}
	return nil
}

// RegisterMatchOutput makes an existing output derive its type from a group.
func (e *Engine) RegisterMatchOutput(ctx context.Context, g *graph.Graph, node *graph.Node, groupID, output string) error {
	if node.Output(output) == nil {
		return fmt.Errorf("%w: output %q not found on node %d", graph.ErrInvariant, output, node.ID)
	}
	grp := matchStateOf(g, node.ID).group(groupID)
	if grp == nil {
		return fmt.Errorf("%w: match group %q not found on node %d", graph.ErrInvariant, groupID, node.ID)
	}
	grp.Outputs = append(grp.Outputs, output)
	return e.recompute(ctx, g, node, grp)
}

func (e *Engine) onMatchTypeChange(ctx context.Context, g *graph.Graph, ev graph.ConnectionEvent) error {
	if ev.Direction != graph.DirInput {
		return nil
	}
	st, ok := g.State(ev.Node.ID, matchTypeKey)
	if !ok {
		return fmt.Errorf("%w: node %d has a match-type handler but no groups", graph.ErrInvariant, ev.Node.ID)
	}
	ms := st.(*matchState)
	grp := ms.groupOf(ev.SlotName)
	var left *matchGroup
	if ev.Kind == graph.EventMoved {
		if left = ms.groupOf(ev.PreviousSlot); left == grp {
			left = nil
		}
	}
	if grp == nil && left == nil {
		return nil
	}

	if ev.Kind != graph.EventDisconnected {
		// The carried type is only authoritative once seeded from the origin.
		link, ok := g.Link(ev.Link.ID)
		if !ok {
			return fmt.Errorf("%w: link %d vanished before the match-type recompute", graph.ErrInvariant, ev.Link.ID)
		}
		ends, err := link.Resolve(g)
		if err != nil {
			return err
		}
		link.Type = ends.Output.Type
	}
	for _, target := range []*matchGroup{grp, left} {
		if target == nil {
			continue
		}
		if err := e.recompute(ctx, g, ev.Node, target); err != nil {
			return err
		}
	}
	return nil
}

// recompute sets every slot of the group to the combination of its declared
// allowance with the resolved types of its siblings, then derives the
// group's outputs. Any empty combination rejects the change.
func (e *Engine) recompute(ctx context.Context, g *graph.Graph, node *graph.Node, grp *matchGroup) error {
	logger := ctxlog.FromContext(ctx)

	resolved := make([]types.Type, len(grp.Slots))
	for i, ms := range grp.Slots {
		in := node.Input(ms.Name)
		if in == nil {
			return fmt.Errorf("%w: match group %q lost slot %q", graph.ErrInvariant, grp.ID, ms.Name)
		}
		resolved[i] = ms.Declared
		if in.Connected() {
			link, ok := g.Link(in.Link)
			if !ok {
				return fmt.Errorf("%w: slot %q references missing link %d", graph.ErrInvariant, ms.Name, in.Link)
			}
			resolved[i] = link.Type
		}
	}

	next := make([]types.Type, len(grp.Slots))
	for i, ms := range grp.Slots {
		operands := make([]types.Type, 0, len(resolved))
		operands = append(operands, ms.Declared)
		for j, t := range resolved {
			if j != i {
				operands = append(operands, t)
			}
		}
		t, err := types.Combine(operands...)
		if err != nil {
			e.rec.ObserveMatchType("incompatible")
			return fmt.Errorf("%w: match group %q, slot %q: %w", graph.ErrIncompatibleType, grp.ID, ms.Name, err)
		}
		next[i] = t
	}
	derived, err := types.Combine(resolved...)
	if err != nil {
		e.rec.ObserveMatchType("incompatible")
		return fmt.Errorf("%w: match group %q output: %w", graph.ErrIncompatibleType, grp.ID, err)
	}

	for i, ms := range grp.Slots {
		node.Input(ms.Name).Type = next[i]
	}
	for _, name := range grp.Outputs {
		if err := e.deriveOutput(ctx, g, node, name, derived); err != nil {
			return err
		}
	}

	e.rec.ObserveMatchType("ok")
	logger.Debug("Match-type group recomputed.", "group", grp.ID, "derived", derived.String())
	return nil
}

// deriveOutput applies the group type to an output, disconnecting downstream
// links it no longer satisfies. Kept links are retyped, which lets a
// match-type node on the other end resolve against the new type.
func (e *Engine) deriveOutput(ctx context.Context, g *graph.Graph, node *graph.Node, name string, t types.Type) error {
	out := node.Output(name)
	if out == nil {
		return fmt.Errorf("%w: derived output %q not found on node %d", graph.ErrInvariant, name, node.ID)
	}
	out.Type = t

	for _, id := range append([]graph.LinkID(nil), out.Links...) {
		link, ok := g.Link(id)
		if !ok {
			continue // dropped by an earlier disconnect in this loop
		}
		ends, err := link.Resolve(g)
		if err != nil {
			return err
		}
		if types.IsValidConnection(t, ends.Input.Type) {
			if err := g.RetypeLink(ctx, id, t); err != nil {
				return err
			}
			continue
		}
		ctxlog.FromContext(ctx).Debug("Dropping downstream link after type change.", "link", id, "output", name, "type", t.String())
		if err := g.DisconnectLink(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
