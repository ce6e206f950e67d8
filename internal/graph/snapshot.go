package graph

// snapshot is a deep copy of everything a transaction may touch. Only the
// outermost transaction takes one, and it copies the whole document, so each
// top-level operation costs time linear in the number of nodes, links and
// side-table entries.
type snapshot struct {
	nodes      map[NodeID]*Node
	contents   map[NodeID]*Node
	order      []NodeID
	links      map[LinkID]Link
	state      map[NodeID]map[string]State
	lastNodeID NodeID
	lastLinkID LinkID
}

func (g *Graph) snapshot() *snapshot {
	s := &snapshot{
		nodes:      make(map[NodeID]*Node, len(g.nodes)),
		contents:   make(map[NodeID]*Node, len(g.nodes)),
		order:      append([]NodeID(nil), g.order...),
		links:      make(map[LinkID]Link, len(g.links)),
		state:      make(map[NodeID]map[string]State, len(g.state)),
		lastNodeID: g.lastNodeID,
		lastLinkID: g.lastLinkID,
	}
	for id, n := range g.nodes {
		s.nodes[id] = n
		s.contents[id] = n.clone()
	}
	for id, l := range g.links {
		s.links[id] = *l
	}
	for id, tbl := range g.state {
		cp := make(map[string]State, len(tbl))
		for k, v := range tbl {
			cp[k] = v.Clone()
		}
		s.state[id] = cp
	}
	return s
}

// restore puts the graph back into the snapshotted state. Node pointers held
// by callers stay valid; slot pointers are replaced.
func (g *Graph) restore(s *snapshot) {
	g.nodes = make(map[NodeID]*Node, len(s.nodes))
	for id, n := range s.nodes {
		*n = *s.contents[id]
		g.nodes[id] = n
	}
	g.order = s.order
	g.links = make(map[LinkID]*Link, len(s.links))
	for id, l := range s.links {
		cp := l
		g.links[id] = &cp
	}
	g.state = s.state
	g.lastNodeID = s.lastNodeID
	g.lastLinkID = s.lastLinkID
}

// transact runs fn atomically. Nested calls join the outermost transaction.
func (g *Graph) transact(fn func() error) (err error) {
	if g.depth > 0 {
		return fn()
	}
	snap := g.snapshot()
	g.depth++
	defer func() {
		g.depth--
		if r := recover(); r != nil {
			g.restore(snap)
			panic(r)
		}
		if err != nil {
			g.restore(snap)
		}
	}()
	return fn()
}

// Atomically runs fn as one transaction: if fn fails, every change it made
// through this graph is undone.
func (g *Graph) Atomically(fn func() error) error {
	return g.transact(fn)
}
