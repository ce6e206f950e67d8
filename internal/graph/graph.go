package graph

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/vk/socketgrid/internal/ctxlog"
)

// State is per-node bookkeeping stored in a graph side table. Clone must
// return an independent copy; it is used to snapshot transactions.
type State interface {
	Clone() State
}

// Graph is one editor document.
type Graph struct {
	ID uuid.UUID

	nodes      map[NodeID]*Node
	order      []NodeID
	links      map[LinkID]*Link
	state      map[NodeID]map[string]State
	lastNodeID NodeID
	lastLinkID LinkID

	// depth counts nested transactions; only the outermost one snapshots.
	depth int
}

// New creates an empty graph with a fresh document id.
func New() *Graph {
	return &Graph{
		ID:    uuid.New(),
		nodes: make(map[NodeID]*Node),
		links: make(map[LinkID]*Link),
		state: make(map[NodeID]map[string]State),
	}
}

// AddNode creates an empty node of the given type.
func (g *Graph) AddNode(ctx context.Context, nodeType string) *Node {
	g.lastNodeID++
	n := &Node{ID: g.lastNodeID, Type: nodeType}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	ctxlog.FromContext(ctx).Debug("Node added.", "graph", g.ID.String(), "node", n.ID, "type", nodeType)
	return n
}

// RemoveNode deletes a node, every link touching it and its side tables. It
// runs as one transaction. Nodes downstream see each dropped link as an
// EventDisconnected on their input and nodes upstream as one on their output.
func (g *Graph) RemoveNode(ctx context.Context, id NodeID) error {
	return g.transact(func() error {
		n, err := g.MustNode(id)
		if err != nil {
			return err
		}
		for _, out := range n.Outputs {
			for _, lid := range append([]LinkID(nil), out.Links...) {
				if _, ok := g.links[lid]; !ok {
					continue // dropped by a handler of an earlier disconnect
				}
				if err := g.DisconnectLink(ctx, lid); err != nil {
					return err
				}
			}
		}
		for i, in := range n.Inputs {
			l, ok := g.links[in.Link]
			if in.Link == NoLink || !ok {
				continue
			}
			removed := *l
			g.RemoveLink(l.ID)
			origin, ok := g.nodes[removed.OriginID]
			if !ok || removed.OriginSlot >= len(origin.Outputs) {
				continue
			}
			if err := g.fireConnection(ctx, ConnectionEvent{
				Kind: EventDisconnected, Direction: DirOutput, Node: origin,
				SlotIndex: removed.OriginSlot, SlotName: origin.Outputs[removed.OriginSlot].Name, Link: &removed,
			}); err != nil {
				return fmt.Errorf("removing link into input %d: %w", i, err)
			}
		}

		delete(g.nodes, id)
		delete(g.state, id)
		g.order = slices.DeleteFunc(g.order, func(nid NodeID) bool { return nid == id })
		ctxlog.FromContext(ctx).Debug("Node removed.", "graph", g.ID.String(), "node", id)
		return nil
	})
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// MustNode returns the node or an ErrInvariant error.
func (g *Graph) MustNode(id NodeID) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: node %d not found", ErrInvariant, id)
	}
	return n, nil
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Link returns the link with the given id.
func (g *Graph) Link(id LinkID) (*Link, bool) {
	l, ok := g.links[id]
	return l, ok
}

// Links returns all links ordered by id.
func (g *Graph) Links() []*Link {
	out := make([]*Link, 0, len(g.links))
	for _, l := range g.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// State returns a side-table entry for a node.
func (g *Graph) State(id NodeID, key string) (State, bool) {
	s, ok := g.state[id][key]
	return s, ok
}

// SetState stores a side-table entry for a node.
func (g *Graph) SetState(id NodeID, key string, s State) {
	tbl, ok := g.state[id]
	if !ok {
		tbl = make(map[string]State)
		g.state[id] = tbl
	}
	tbl[key] = s
}

func (g *Graph) nextLinkID() LinkID {
	g.lastLinkID++
	return g.lastLinkID
}
