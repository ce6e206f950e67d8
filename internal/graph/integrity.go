package graph

import (
	"errors"
	"fmt"
)

// CheckIntegrity verifies the document invariants: unique slot names per
// node, no slot referencing a missing link, and every registered link
// attached at both ends to the slots that reference it.
func (g *Graph) CheckIntegrity() error {
	var errs []error
	referenced := make(map[LinkID]int)

	for _, n := range g.Nodes() {
		inputs := make(map[string]struct{}, len(n.Inputs))
		for i, in := range n.Inputs {
			if _, dup := inputs[in.Name]; dup {
				errs = append(errs, fmt.Errorf("node %d: duplicate input %q", n.ID, in.Name))
			}
			inputs[in.Name] = struct{}{}
			if in.Link == NoLink {
				continue
			}
			referenced[in.Link]++
			l, ok := g.links[in.Link]
			if !ok {
				errs = append(errs, fmt.Errorf("node %d: input %q references missing link %d", n.ID, in.Name, in.Link))
				continue
			}
			if l.TargetID != n.ID || l.TargetSlot != i {
				errs = append(errs, fmt.Errorf("node %d: link %d targets %d/%d but sits on input %d", n.ID, l.ID, l.TargetID, l.TargetSlot, i))
			}
		}

		outputs := make(map[string]struct{}, len(n.Outputs))
		for i, out := range n.Outputs {
			if _, dup := outputs[out.Name]; dup {
				errs = append(errs, fmt.Errorf("node %d: duplicate output %q", n.ID, out.Name))
			}
			outputs[out.Name] = struct{}{}
			for _, lid := range out.Links {
				referenced[lid]++
				l, ok := g.links[lid]
				if !ok {
					errs = append(errs, fmt.Errorf("node %d: output %q references missing link %d", n.ID, out.Name, lid))
					continue
				}
				if l.OriginID != n.ID || l.OriginSlot != i {
					errs = append(errs, fmt.Errorf("node %d: link %d originates at %d/%d but sits on output %d", n.ID, l.ID, l.OriginID, l.OriginSlot, i))
				}
			}
		}

		widgets := make(map[string]struct{}, len(n.Widgets))
		for _, w := range n.Widgets {
			if _, dup := widgets[w.Name]; dup {
				errs = append(errs, fmt.Errorf("node %d: duplicate widget %q", n.ID, w.Name))
			}
			widgets[w.Name] = struct{}{}
		}
	}

	for id := range g.links {
		if referenced[id] != 2 {
			errs = append(errs, fmt.Errorf("link %d is referenced by %d slots, want 2", id, referenced[id]))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvariant, errors.Join(errs...))
	}
	return nil
}
