package graph

import (
	"github.com/vk/socketgrid/internal/types"
)

// NodeID identifies a node within one graph.
type NodeID int

// LinkID identifies a link within one graph.
type LinkID int

// NoLink is the link id of an unconnected input.
const NoLink LinkID = 0

// Sizing constants used by ComputeSize.
const (
	DefaultWidth = 200
	TitleHeight  = 30
	SlotHeight   = 20
)

// InputSlot is a named, typed connection point accepting at most one link.
type InputSlot struct {
	Name     string
	Label    string
	Type     types.Type
	Link     LinkID
	Optional bool
	// Widget names the widget this socket drives, if any. It is resolved
	// through the owning node so a removed widget is never kept alive.
	Widget string
}

// Connected reports whether a link is attached.
func (s *InputSlot) Connected() bool {
	return s.Link != NoLink
}

// OutputSlot is a named, typed connection point feeding any number of links.
type OutputSlot struct {
	Name  string
	Label string
	Type  types.Type
	Links []LinkID
}

// Widget is an editable value on a node. A widget with Options is a combo.
type Widget struct {
	Name    string
	Value   any
	Options []string
}

// Node owns ordered inputs, outputs and widgets.
type Node struct {
	ID      NodeID
	Type    string
	Inputs  []*InputSlot
	Outputs []*OutputSlot
	Widgets []*Widget
	Size    [2]float64

	connHandlers   []ConnectionHandler
	widgetHandlers []WidgetHandler
}

// InputIndex returns the index of the named input, or -1.
func (n *Node) InputIndex(name string) int {
	for i, in := range n.Inputs {
		if in.Name == name {
			return i
		}
	}
	return -1
}

// Input returns the named input, or nil.
func (n *Node) Input(name string) *InputSlot {
	if i := n.InputIndex(name); i >= 0 {
		return n.Inputs[i]
	}
	return nil
}

// OutputIndex returns the index of the named output, or -1.
func (n *Node) OutputIndex(name string) int {
	for i, out := range n.Outputs {
		if out.Name == name {
			return i
		}
	}
	return -1
}

// Output returns the named output, or nil.
func (n *Node) Output(name string) *OutputSlot {
	if i := n.OutputIndex(name); i >= 0 {
		return n.Outputs[i]
	}
	return nil
}

// Widget returns the named widget, or nil.
func (n *Node) Widget(name string) *Widget {
	for _, w := range n.Widgets {
		if w.Name == name {
			return w
		}
	}
	return nil
}

// WidgetFor resolves the widget an input socket drives, or nil.
func (n *Node) WidgetFor(slot *InputSlot) *Widget {
	if slot == nil || slot.Widget == "" {
		return nil
	}
	return n.Widget(slot.Widget)
}

// InputNames lists input names in order.
func (n *Node) InputNames() []string {
	names := make([]string, len(n.Inputs))
	for i, in := range n.Inputs {
		names[i] = in.Name
	}
	return names
}

// ComputeSize returns the size needed to show every slot and widget.
func (n *Node) ComputeSize() [2]float64 {
	rows := len(n.Inputs)
	if len(n.Outputs) > rows {
		rows = len(n.Outputs)
	}
	for _, w := range n.Widgets {
		if n.Input(w.Name) == nil {
			rows++
		}
	}
	return [2]float64{DefaultWidth, float64(TitleHeight + rows*SlotHeight)}
}

// OnConnectionChange appends a connection handler. Earlier handlers keep
// running; handlers run in registration order.
func (n *Node) OnConnectionChange(h ConnectionHandler) {
	n.connHandlers = append(n.connHandlers, h)
}

// OnWidgetChange appends a widget value handler.
func (n *Node) OnWidgetChange(h WidgetHandler) {
	n.widgetHandlers = append(n.widgetHandlers, h)
}

func (n *Node) clone() *Node {
	c := &Node{
		ID:             n.ID,
		Type:           n.Type,
		Size:           n.Size,
		connHandlers:   n.connHandlers,
		widgetHandlers: n.widgetHandlers,
	}
	c.Inputs = make([]*InputSlot, len(n.Inputs))
	for i, in := range n.Inputs {
		cp := *in
		c.Inputs[i] = &cp
	}
	c.Outputs = make([]*OutputSlot, len(n.Outputs))
	for i, out := range n.Outputs {
		cp := *out
		cp.Links = append([]LinkID(nil), out.Links...)
		c.Outputs[i] = &cp
	}
	c.Widgets = make([]*Widget, len(n.Widgets))
	for i, w := range n.Widgets {
		cp := *w
		cp.Options = append([]string(nil), w.Options...)
		c.Widgets[i] = &cp
	}
	return c
}
