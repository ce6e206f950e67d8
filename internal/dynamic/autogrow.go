package dynamic

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/slotpath"
)

func autogrowKey(group string) string {
	return "autogrow:" + group
}

// autogrowState is the row layout of one autogrow group.
type autogrowState struct {
	Group string
	Spec  *config.AutogrowSpec
	// Rows holds the slot names of each row, one per template column.
	Rows [][]string
}

func (s *autogrowState) Clone() graph.State {
	c := &autogrowState{Group: s.Group, Spec: s.Spec, Rows: make([][]string, len(s.Rows))}
	for i, row := range s.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

func (s *autogrowState) rowName(r int) string {
	if len(s.Spec.Names) > 0 {
		return s.Spec.Names[r]
	}
	return s.Spec.Prefix + strconv.Itoa(r)
}

func (s *autogrowState) slotName(r, col int) string {
	if len(s.Spec.Template) == 1 {
		return slotpath.Join(s.Group, s.rowName(r))
	}
	return slotpath.Join(s.Group, s.rowName(r), s.Spec.Template[col].Name)
}

// locate returns the row and column of a slot, or -1, -1.
func (s *autogrowState) locate(name string) (int, int) {
	for r, row := range s.Rows {
		for c, n := range row {
			if n == name {
				return r, c
			}
		}
	}
	return -1, -1
}

func autogrowStateOf(g *graph.Graph, id graph.NodeID, group string) (*autogrowState, error) {
	st, ok := g.State(id, autogrowKey(group))
	if !ok {
		return nil, fmt.Errorf("%w: autogrow group %q not found on node %d", graph.ErrInvariant, group, id)
	}
	return st.(*autogrowState), nil
}

// InitAutogrow creates the first max(min, 1) rows of group at the end of the
// node's inputs and starts tracking connections on them.
func (e *Engine) InitAutogrow(ctx context.Context, g *graph.Graph, node *graph.Node, group string, spec *config.AutogrowSpec) error {
	if _, exists := g.State(node.ID, autogrowKey(group)); exists {
		return fmt.Errorf("%w: autogrow group %q is already installed on node %d", config.ErrInvalidSpec, group, node.ID)
	}
	st := &autogrowState{Group: group, Spec: spec}
	g.SetState(node.ID, autogrowKey(group), st)

	at := len(node.Inputs)
	for r := 0; r < max(spec.Min, 1); r++ {
		if err := e.insertRow(g, node, st, at); err != nil {
			return err
		}
		at += len(spec.Template)
	}

	node.OnConnectionChange(func(ctx context.Context, g *graph.Graph, ev graph.ConnectionEvent) error {
		return e.onAutogrowChange(ctx, g, ev, group)
	})
	ctxlog.FromContext(ctx).Debug("Autogrow group installed.", "group", group, "rows", len(st.Rows), "min", spec.Min, "max", spec.Max)
	return nil
}

// ConnectedCount counts the connected inputs under the group's name prefix.
func ConnectedCount(node *graph.Node, group string) int {
	var n int
	for _, in := range node.Inputs {
		if in.Connected() && slotpath.InGroup(in.Name, group) {
			n++
		}
	}
	return n
}

// RowCount returns the current number of rows of an autogrow group.
func RowCount(g *graph.Graph, node *graph.Node, group string) (int, error) {
	st, err := autogrowStateOf(g, node.ID, group)
	if err != nil {
		return 0, err
	}
	return len(st.Rows), nil
}

func (e *Engine) onAutogrowChange(ctx context.Context, g *graph.Graph, ev graph.ConnectionEvent, group string) error {
	if ev.Direction != graph.DirInput {
		return nil
	}
	st, err := autogrowStateOf(g, ev.Node.ID, group)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case graph.EventConnected:
		return e.grow(ctx, g, ev.Node, st, ev.SlotName)
	case graph.EventDisconnected:
		return e.release(ctx, g, ev.Node, st, ev.SlotName)
	case graph.EventMoved:
		// Grow first so a link dropped on the last row keeps a free row
		// behind it, then release the row it left.
		if err := e.grow(ctx, g, ev.Node, st, ev.SlotName); err != nil {
			return err
		}
		return e.release(ctx, g, ev.Node, st, ev.PreviousSlot)
	}
	// EventRelinked: the slot stayed connected, nothing to do.
	return nil
}

// grow appends a row when slot sits in the last row and the group has room.
func (e *Engine) grow(ctx context.Context, g *graph.Graph, node *graph.Node, st *autogrowState, slot string) error {
	row, _ := st.locate(slot)
	if row < 0 || row != len(st.Rows)-1 || len(st.Rows) >= st.Spec.Max {
		return nil
	}
	at, err := rowEnd(node, st, row)
	if err != nil {
		return err
	}
	if err := e.insertRow(g, node, st, at); err != nil {
		return err
	}
	e.rec.ObserveAutogrow("grow", 1)
	ctxlog.FromContext(ctx).Debug("Autogrow row added.", "group", st.Group, "row", row, "rows", len(st.Rows))
	node.Size = node.ComputeSize()
	return nil
}

// release shrinks the group after slot lost its link.
func (e *Engine) release(ctx context.Context, g *graph.Graph, node *graph.Node, st *autogrowState, slot string) error {
	row, _ := st.locate(slot)
	if row < 0 {
		return nil
	}
	removed, err := e.shrink(g, node, st, row)
	if err != nil {
		return err
	}
	if removed > 0 {
		e.rec.ObserveAutogrow("shrink", removed)
		ctxlog.FromContext(ctx).Debug("Autogrow rows removed.", "group", st.Group, "row", row, "removed", removed, "rows", len(st.Rows))
		node.Size = node.ComputeSize()
	}
	return nil
}

// shrink compacts the group after row emptied and trims surplus empty rows.
// It returns the number of rows removed.
func (e *Engine) shrink(g *graph.Graph, node *graph.Node, st *autogrowState, row int) (int, error) {
	if len(st.Rows) <= st.Spec.Min {
		return 0, nil
	}
	empty, err := rowEmpty(node, st, row)
	if err != nil || !empty {
		return 0, err
	}

	for col := range st.Spec.Template {
		if err := compactColumn(g, node, st, row, col); err != nil {
			return 0, err
		}
	}

	removed := 0
	for len(st.Rows) > st.Spec.Min && len(st.Rows) >= 2 {
		last, err := rowEmpty(node, st, len(st.Rows)-1)
		if err != nil {
			return removed, err
		}
		prev, err := rowEmpty(node, st, len(st.Rows)-2)
		if err != nil {
			return removed, err
		}
		if !last || !prev {
			break
		}
		if err := removeLastRow(g, node, st); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// compactColumn shifts every link of column col below row up into the
// nearest earlier empty slot of the same column.
func compactColumn(g *graph.Graph, node *graph.Node, st *autogrowState, row, col int) error {
	free := row
	for r := row + 1; r < len(st.Rows); r++ {
		in := node.Input(st.Rows[r][col])
		if in == nil {
			return fmt.Errorf("%w: autogrow slot %q not found", graph.ErrInvariant, st.Rows[r][col])
		}
		if !in.Connected() {
			continue
		}
		target := node.InputIndex(st.Rows[free][col])
		if target < 0 {
			return fmt.Errorf("%w: autogrow slot %q not found", graph.ErrInvariant, st.Rows[free][col])
		}
		if err := g.RetargetLink(in.Link, target); err != nil {
			return err
		}
		// Rows before free are occupied; everything after it up to r is empty.
		free++
	}
	return nil
}

func (e *Engine) insertRow(g *graph.Graph, node *graph.Node, st *autogrowState, at int) error {
	r := len(st.Rows)
	if r >= st.Spec.Max {
		return fmt.Errorf("%w: autogrow group %q is full", graph.ErrInvariant, st.Group)
	}
	slots := make([]*graph.InputSlot, len(st.Spec.Template))
	names := make([]string, len(st.Spec.Template))
	for c, tmpl := range st.Spec.Template {
		name := st.slotName(r, c)
		label := st.rowName(r)
		if tmpl.Name != "" && len(st.Spec.Template) > 1 {
			label = slotpath.Join(label, tmpl.Name)
		}
		slots[c] = &graph.InputSlot{
			Name:     name,
			Label:    label,
			Type:     tmpl.Type,
			Optional: r >= st.Spec.Min || tmpl.Optional,
		}
		if tmpl.Widget != nil {
			if err := g.AddWidget(node.ID, &graph.Widget{Name: name, Value: tmpl.Widget}); err != nil {
				return err
			}
			slots[c].Widget = name
		}
		names[c] = name
	}
	if err := g.InsertInputs(node.ID, at, slots...); err != nil {
		return err
	}
	st.Rows = append(st.Rows, names)
	return nil
}

func removeLastRow(g *graph.Graph, node *graph.Node, st *autogrowState) error {
	last := st.Rows[len(st.Rows)-1]
	start := node.InputIndex(last[0])
	if start < 0 {
		return fmt.Errorf("%w: autogrow slot %q not found", graph.ErrInvariant, last[0])
	}
	for i, name := range last {
		if start+i >= len(node.Inputs) || node.Inputs[start+i].Name != name {
			return fmt.Errorf("%w: autogrow row %v is not contiguous", graph.ErrInvariant, last)
		}
	}
	if _, err := g.RemoveInputs(node.ID, start, len(last)); err != nil {
		return err
	}
	for _, name := range last {
		if err := g.RemoveWidget(node.ID, name); err != nil {
			return err
		}
	}
	st.Rows = st.Rows[:len(st.Rows)-1]
	return nil
}

// rowEnd returns the input index right after the row's last slot.
func rowEnd(node *graph.Node, st *autogrowState, row int) (int, error) {
	names := st.Rows[row]
	idx := node.InputIndex(names[len(names)-1])
	if idx < 0 {
		return 0, fmt.Errorf("%w: autogrow slot %q not found", graph.ErrInvariant, names[len(names)-1])
	}
	return idx + 1, nil
}

func rowEmpty(node *graph.Node, st *autogrowState, row int) (bool, error) {
	for _, name := range st.Rows[row] {
		in := node.Input(name)
		if in == nil {
			return false, fmt.Errorf("%w: autogrow slot %q not found", graph.ErrInvariant, name)
		}
		if in.Connected() {
			return false, nil
		}
	}
	return true, nil
}
