// This file holds the structural primitives managers use to reshape a node.
// None of them notify connection handlers: they are building blocks run from
// inside handlers or node construction, where the caller owns the change.

package graph

import (
	"fmt"
	"slices"
)

// AddInput appends an input slot and returns its index.
func (g *Graph) AddInput(id NodeID, slot *InputSlot) (int, error) {
	n, err := g.MustNode(id)
	if err != nil {
		return -1, err
	}
	if err := g.InsertInputs(id, len(n.Inputs), slot); err != nil {
		return -1, err
	}
	return len(n.Inputs) - 1, nil
}

// InsertInputs inserts slots before index, keeping every existing link
// pointed at the slot it was attached to.
func (g *Graph) InsertInputs(id NodeID, index int, slots ...*InputSlot) error {
	n, err := g.MustNode(id)
	if err != nil {
		return err
	}
	if index < 0 || index > len(n.Inputs) {
		return fmt.Errorf("%w: insert index %d out of range on node %d", ErrInvariant, index, id)
	}
	seen := make(map[string]struct{}, len(n.Inputs)+len(slots))
	for _, in := range n.Inputs {
		seen[in.Name] = struct{}{}
	}
	for _, s := range slots {
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: input %q already exists on node %d", ErrInvariant, s.Name, id)
		}
		seen[s.Name] = struct{}{}
		s.Link = NoLink
	}
	n.Inputs = slices.Insert(n.Inputs, index, slots...)
	g.renumber(n)
	return nil
}

// RemoveInputs removes count slots starting at index. Links attached to the
// removed slots are dropped from the graph.
func (g *Graph) RemoveInputs(id NodeID, index, count int) ([]*InputSlot, error) {
	n, err := g.MustNode(id)
	if err != nil {
		return nil, err
	}
	if index < 0 || count < 0 || index+count > len(n.Inputs) {
		return nil, fmt.Errorf("%w: remove range [%d,%d) out of range on node %d", ErrInvariant, index, index+count, id)
	}
	removed := append([]*InputSlot(nil), n.Inputs[index:index+count]...)
	for _, s := range removed {
		if s.Link != NoLink {
			g.RemoveLink(s.Link)
		}
	}
	n.Inputs = slices.Delete(n.Inputs, index, index+count)
	g.renumber(n)
	return removed, nil
}

// SpliceInputs removes count slots at index and inserts items in their place.
func (g *Graph) SpliceInputs(id NodeID, index, count int, items ...*InputSlot) ([]*InputSlot, error) {
	removed, err := g.RemoveInputs(id, index, count)
	if err != nil {
		return nil, err
	}
	if err := g.InsertInputs(id, index, items...); err != nil {
		return nil, err
	}
	return removed, nil
}

// AddOutput appends an output slot and returns its index.
func (g *Graph) AddOutput(id NodeID, slot *OutputSlot) (int, error) {
	n, err := g.MustNode(id)
	if err != nil {
		return -1, err
	}
	if n.Output(slot.Name) != nil {
		return -1, fmt.Errorf("%w: output %q already exists on node %d", ErrInvariant, slot.Name, id)
	}
	slot.Links = nil
	n.Outputs = append(n.Outputs, slot)
	return len(n.Outputs) - 1, nil
}

// AddWidget appends a widget.
func (g *Graph) AddWidget(id NodeID, w *Widget) error {
	n, err := g.MustNode(id)
	if err != nil {
		return err
	}
	if n.Widget(w.Name) != nil {
		return fmt.Errorf("%w: widget %q already exists on node %d", ErrInvariant, w.Name, id)
	}
	n.Widgets = append(n.Widgets, w)
	return nil
}

// RemoveWidget deletes a widget by name. Missing widgets are ignored.
func (g *Graph) RemoveWidget(id NodeID, name string) error {
	n, err := g.MustNode(id)
	if err != nil {
		return err
	}
	n.Widgets = slices.DeleteFunc(n.Widgets, func(w *Widget) bool { return w.Name == name })
	return nil
}

// RemoveLink drops a link from both endpoints and from the graph.
func (g *Graph) RemoveLink(id LinkID) {
	l, ok := g.links[id]
	if !ok {
		return
	}
	if origin, ok := g.nodes[l.OriginID]; ok && l.OriginSlot >= 0 && l.OriginSlot < len(origin.Outputs) {
		out := origin.Outputs[l.OriginSlot]
		out.Links = slices.DeleteFunc(out.Links, func(x LinkID) bool { return x == id })
	}
	if target, ok := g.nodes[l.TargetID]; ok && l.TargetSlot >= 0 && l.TargetSlot < len(target.Inputs) {
		if in := target.Inputs[l.TargetSlot]; in.Link == id {
			in.Link = NoLink
		}
	}
	delete(g.links, id)
}

// DetachLink frees the link's target slot while keeping the link registered
// and attached to its origin. It must be followed by AttachLink or RemoveLink
// before the surrounding operation ends.
func (g *Graph) DetachLink(id LinkID) error {
	l, ok := g.links[id]
	if !ok {
		return fmt.Errorf("%w: link %d not found", ErrInvariant, id)
	}
	if target, ok := g.nodes[l.TargetID]; ok && l.TargetSlot >= 0 && l.TargetSlot < len(target.Inputs) {
		if in := target.Inputs[l.TargetSlot]; in.Link == id {
			in.Link = NoLink
		}
	}
	l.TargetSlot = detached
	return nil
}

// AttachLink connects a registered link to an empty input slot.
func (g *Graph) AttachLink(id LinkID, target NodeID, index int) error {
	l, ok := g.links[id]
	if !ok {
		return fmt.Errorf("%w: link %d not found", ErrInvariant, id)
	}
	n, err := g.MustNode(target)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(n.Inputs) {
		return fmt.Errorf("%w: input %d not found on node %d", ErrInvariant, index, target)
	}
	in := n.Inputs[index]
	if in.Link != NoLink && in.Link != id {
		return fmt.Errorf("%w: input %q on node %d is already linked", ErrInvariant, in.Name, target)
	}
	if l.TargetSlot != detached {
		if err := g.DetachLink(id); err != nil {
			return err
		}
	}
	l.TargetID = target
	l.TargetSlot = index
	in.Link = id
	return nil
}

// RetargetLink moves a link to another input of the node it already targets.
func (g *Graph) RetargetLink(id LinkID, index int) error {
	l, ok := g.links[id]
	if !ok {
		return fmt.Errorf("%w: link %d not found", ErrInvariant, id)
	}
	target := l.TargetID
	if err := g.DetachLink(id); err != nil {
		return err
	}
	return g.AttachLink(id, target, index)
}

// renumber rewrites the endpoints of every link touching n after a splice.
func (g *Graph) renumber(n *Node) {
	for i, in := range n.Inputs {
		if in.Link == NoLink {
			continue
		}
		if l, ok := g.links[in.Link]; ok {
			l.TargetSlot = i
		}
	}
	for i, out := range n.Outputs {
		for _, lid := range out.Links {
			if l, ok := g.links[lid]; ok {
				l.OriginSlot = i
			}
		}
	}
}
