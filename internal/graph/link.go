package graph

import (
	"fmt"

	"github.com/vk/socketgrid/internal/types"
)

// detached marks a link whose target endpoint is being rewired.
const detached = -1

// Link is a directed, typed edge from an output slot to an input slot.
// Endpoints are ids and indices, resolved on demand.
type Link struct {
	ID         LinkID
	OriginID   NodeID
	OriginSlot int
	TargetID   NodeID
	TargetSlot int
	// Type is the type carried by the link, seeded from its origin output.
	Type types.Type
}

// Endpoints is a resolved link.
type Endpoints struct {
	Origin *Node
	Output *OutputSlot
	Target *Node
	Input  *InputSlot
}

// Resolve looks up the concrete slots the link connects.
func (l *Link) Resolve(g *Graph) (*Endpoints, error) {
	origin, ok := g.nodes[l.OriginID]
	if !ok || l.OriginSlot < 0 || l.OriginSlot >= len(origin.Outputs) {
		return nil, fmt.Errorf("%w: link %d has no origin slot", ErrInvariant, l.ID)
	}
	target, ok := g.nodes[l.TargetID]
	if !ok || l.TargetSlot < 0 || l.TargetSlot >= len(target.Inputs) {
		return nil, fmt.Errorf("%w: link %d has no target slot", ErrInvariant, l.ID)
	}
	return &Endpoints{
		Origin: origin,
		Output: origin.Outputs[l.OriginSlot],
		Target: target,
		Input:  target.Inputs[l.TargetSlot],
	}, nil
}
