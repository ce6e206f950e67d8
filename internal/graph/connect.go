package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/types"
)

// Connect links an output of origin to an input of target. An occupied input
// has its old link replaced and receives a single EventRelinked.
func (g *Graph) Connect(ctx context.Context, originID NodeID, outIdx int, targetID NodeID, inIdx int) (*Link, error) {
	logger := ctxlog.FromContext(ctx)
	var link *Link

	err := g.transact(func() error {
		origin, err := g.MustNode(originID)
		if err != nil {
			return err
		}
		target, err := g.MustNode(targetID)
		if err != nil {
			return err
		}
		if outIdx < 0 || outIdx >= len(origin.Outputs) {
			return fmt.Errorf("%w: output %d not found on node %d", ErrInvariant, outIdx, originID)
		}
		if inIdx < 0 || inIdx >= len(target.Inputs) {
			return fmt.Errorf("%w: input %d not found on node %d", ErrInvariant, inIdx, targetID)
		}
		if originID == targetID {
			return fmt.Errorf("%w: node %d cannot be linked to itself", ErrIncompatibleType, originID)
		}
		out, in := origin.Outputs[outIdx], target.Inputs[inIdx]
		if !types.IsValidConnection(out.Type, in.Type) {
			return fmt.Errorf("%w: cannot connect %s (%s) to %s (%s)", ErrIncompatibleType, out.Name, out.Type, in.Name, in.Type)
		}

		var previous *Link
		if in.Link != NoLink {
			if old, ok := g.links[in.Link]; ok {
				cp := *old
				previous = &cp
			}
			g.RemoveLink(in.Link)
		}

		link = &Link{
			ID:         g.nextLinkID(),
			OriginID:   originID,
			OriginSlot: outIdx,
			TargetID:   targetID,
			TargetSlot: inIdx,
			Type:       out.Type,
		}
		g.links[link.ID] = link
		in.Link = link.ID
		out.Links = append(out.Links, link.ID)

		kind := EventConnected
		if previous != nil {
			kind = EventRelinked
			if prevOrigin, ok := g.nodes[previous.OriginID]; ok && previous.OriginSlot < len(prevOrigin.Outputs) {
				if err := g.fireConnection(ctx, ConnectionEvent{
					Kind: EventDisconnected, Direction: DirOutput, Node: prevOrigin,
					SlotIndex: previous.OriginSlot, SlotName: prevOrigin.Outputs[previous.OriginSlot].Name, Link: previous,
				}); err != nil {
					return err
				}
			}
		}

		if err := g.fireConnection(ctx, ConnectionEvent{
			Kind: kind, Direction: DirInput, Node: target,
			SlotIndex: link.TargetSlot, SlotName: in.Name, Link: link, Previous: previous,
		}); err != nil {
			return err
		}
		if _, still := g.links[link.ID]; !still {
			// A handler already dropped the link again.
			return nil
		}
		return g.fireConnection(ctx, ConnectionEvent{
			Kind: EventConnected, Direction: DirOutput, Node: origin,
			SlotIndex: link.OriginSlot, SlotName: origin.Outputs[link.OriginSlot].Name, Link: link,
		})
	})
	if err != nil {
		logger.Warn("Connection rejected.", "origin", originID, "output", outIdx, "target", targetID, "input", inIdx, "error", err)
		return nil, err
	}
	logger.Debug("Connection made.", "link", link.ID, "origin", originID, "target", targetID, "type", link.Type.String())
	return link, nil
}

// Disconnect removes the link attached to an input. Disconnecting an empty
// input is a no-op.
func (g *Graph) Disconnect(ctx context.Context, targetID NodeID, inIdx int) error {
	return g.transact(func() error {
		target, err := g.MustNode(targetID)
		if err != nil {
			return err
		}
		if inIdx < 0 || inIdx >= len(target.Inputs) {
			return fmt.Errorf("%w: input %d not found on node %d", ErrInvariant, inIdx, targetID)
		}
		in := target.Inputs[inIdx]
		if in.Link == NoLink {
			return nil
		}
		l, ok := g.links[in.Link]
		if !ok {
			return fmt.Errorf("%w: input %q references missing link %d", ErrInvariant, in.Name, in.Link)
		}
		removed := *l
		g.RemoveLink(l.ID)
		ctxlog.FromContext(ctx).Debug("Link removed.", "link", removed.ID, "target", targetID, "input", in.Name)

		if err := g.fireConnection(ctx, ConnectionEvent{
			Kind: EventDisconnected, Direction: DirInput, Node: target,
			SlotIndex: inIdx, SlotName: in.Name, Link: &removed,
		}); err != nil {
			return err
		}
		origin, ok := g.nodes[removed.OriginID]
		if !ok || removed.OriginSlot >= len(origin.Outputs) {
			return nil
		}
		return g.fireConnection(ctx, ConnectionEvent{
			Kind: EventDisconnected, Direction: DirOutput, Node: origin,
			SlotIndex: removed.OriginSlot, SlotName: origin.Outputs[removed.OriginSlot].Name, Link: &removed,
		})
	})
}

// DisconnectLink removes a link by id.
func (g *Graph) DisconnectLink(ctx context.Context, id LinkID) error {
	l, ok := g.links[id]
	if !ok {
		return fmt.Errorf("%w: link %d not found", ErrInvariant, id)
	}
	return g.Disconnect(ctx, l.TargetID, l.TargetSlot)
}

// RetypeLink changes the type a link carries and notifies the target node
// with an EventRelinked on the same link, so its handlers can resolve against
// the new type. Setting the type it already carries fires nothing.
func (g *Graph) RetypeLink(ctx context.Context, id LinkID, t types.Type) error {
	return g.transact(func() error {
		l, ok := g.links[id]
		if !ok {
			return fmt.Errorf("%w: link %d not found", ErrInvariant, id)
		}
		if l.Type.Equal(t) {
			return nil
		}
		previous := *l
		l.Type = t
		target, ok := g.nodes[l.TargetID]
		if !ok || l.TargetSlot < 0 || l.TargetSlot >= len(target.Inputs) {
			return fmt.Errorf("%w: link %d has no target slot", ErrInvariant, id)
		}
		ctxlog.FromContext(ctx).Debug("Link retyped.", "link", id, "from", previous.Type.String(), "to", t.String())
		return g.fireConnection(ctx, ConnectionEvent{
			Kind: EventRelinked, Direction: DirInput, Node: target,
			SlotIndex: l.TargetSlot, SlotName: target.Inputs[l.TargetSlot].Name, Link: l, Previous: &previous,
		})
	})
}

// MoveLink drags the target end of a link onto another input and keeps the
// link id. Within one node the target receives a single EventMoved. Across
// nodes the old target receives EventDisconnected and the new one
// EventConnected, or EventRelinked when the input was occupied. Dropping the
// link on the slot it already occupies changes nothing and fires no events.
func (g *Graph) MoveLink(ctx context.Context, id LinkID, targetID NodeID, inIdx int) (*Link, error) {
	l, ok := g.links[id]
	if !ok {
		return nil, fmt.Errorf("%w: link %d not found", ErrInvariant, id)
	}
	if l.TargetID == targetID && l.TargetSlot == inIdx {
		return l, nil
	}

	err := g.transact(func() error {
		target, err := g.MustNode(targetID)
		if err != nil {
			return err
		}
		if inIdx < 0 || inIdx >= len(target.Inputs) {
			return fmt.Errorf("%w: input %d not found on node %d", ErrInvariant, inIdx, targetID)
		}
		if l.OriginID == targetID {
			return fmt.Errorf("%w: node %d cannot be linked to itself", ErrIncompatibleType, targetID)
		}
		ends, err := l.Resolve(g)
		if err != nil {
			return err
		}
		in := target.Inputs[inIdx]
		if !types.IsValidConnection(ends.Output.Type, in.Type) {
			return fmt.Errorf("%w: cannot move %s (%s) to %s (%s)", ErrIncompatibleType, ends.Output.Name, ends.Output.Type, in.Name, in.Type)
		}

		previous := *l
		oldTarget, oldSlot := ends.Target, ends.Input.Name
		var replaced *Link
		if in.Link != NoLink {
			if old, ok := g.links[in.Link]; ok {
				cp := *old
				replaced = &cp
			}
			g.RemoveLink(in.Link)
		}
		if err := g.AttachLink(id, targetID, inIdx); err != nil {
			return err
		}
		l.Type = ends.Output.Type
		ctxlog.FromContext(ctx).Debug("Link moved.", "link", id, "from", oldSlot, "to", in.Name, "target", targetID)

		if replaced != nil {
			if prevOrigin, ok := g.nodes[replaced.OriginID]; ok && replaced.OriginSlot < len(prevOrigin.Outputs) {
				if err := g.fireConnection(ctx, ConnectionEvent{
					Kind: EventDisconnected, Direction: DirOutput, Node: prevOrigin,
					SlotIndex: replaced.OriginSlot, SlotName: prevOrigin.Outputs[replaced.OriginSlot].Name, Link: replaced,
				}); err != nil {
					return err
				}
			}
		}

		if oldTarget == target {
			return g.fireConnection(ctx, ConnectionEvent{
				Kind: EventMoved, Direction: DirInput, Node: target,
				SlotIndex: l.TargetSlot, SlotName: in.Name, Link: l,
				Previous: &previous, PreviousSlot: oldSlot,
			})
		}

		if err := g.fireConnection(ctx, ConnectionEvent{
			Kind: EventDisconnected, Direction: DirInput, Node: oldTarget,
			SlotIndex: previous.TargetSlot, SlotName: oldSlot, Link: &previous,
		}); err != nil {
			return err
		}
		if _, still := g.links[id]; !still {
			return nil
		}
		kind := EventConnected
		if replaced != nil {
			kind = EventRelinked
		}
		return g.fireConnection(ctx, ConnectionEvent{
			Kind: kind, Direction: DirInput, Node: target,
			SlotIndex: l.TargetSlot, SlotName: in.Name, Link: l, Previous: replaced,
		})
	})
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Link move rejected.", "link", id, "target", targetID, "input", inIdx, "error", err)
		return nil, err
	}
	if current, ok := g.links[id]; ok {
		return current, nil
	}
	return l, nil
}

// SetWidgetValue changes a widget value and notifies the node's widget
// handlers. Combo widgets accept only their options or nil / "" for "no
// selection".
func (g *Graph) SetWidgetValue(ctx context.Context, id NodeID, name string, value any) error {
	return g.transact(func() error {
		n, err := g.MustNode(id)
		if err != nil {
			return err
		}
		w := n.Widget(name)
		if w == nil {
			return fmt.Errorf("%w: widget %q not found on node %d", ErrInvariant, name, id)
		}
		if len(w.Options) > 0 && value != nil && value != "" {
			s, ok := value.(string)
			if !ok || !slices.Contains(w.Options, s) {
				return fmt.Errorf("%w: %v is not one of %v for %q", ErrInvalidValue, value, w.Options, name)
			}
		}
		previous := w.Value
		w.Value = value
		ctxlog.FromContext(ctx).Debug("Widget value changed.", "node", id, "widget", name, "value", value)
		return g.fireWidget(ctx, WidgetEvent{Node: n, Widget: w, Previous: previous})
	})
}
