package graph

import "context"

// EventKind describes how a slot's connection state changed.
type EventKind int

const (
	// EventConnected is a disconnected -> connected transition.
	EventConnected EventKind = iota + 1
	// EventDisconnected is a connected -> disconnected transition.
	EventDisconnected
	// EventRelinked means the slot stayed connected but its link was replaced
	// or now carries another type.
	EventRelinked
	// EventMoved means a link kept its id but its target end moved to another
	// input of the same node.
	EventMoved
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventRelinked:
		return "relinked"
	case EventMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// Direction tells which side of a node an event concerns.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
)

// ConnectionEvent is delivered to every handler of the node owning the slot.
type ConnectionEvent struct {
	Kind      EventKind
	Direction Direction
	Node      *Node
	SlotIndex int
	// SlotName is the name of the slot when the event fired. Handlers that
	// run after another handler reshaped the node should look slots up by
	// name rather than by SlotIndex.
	SlotName string
	// Link is the attached link for connect/relink, the removed one for
	// disconnect. Removed links are no longer registered in the graph.
	Link *Link
	// Previous is the replaced link of an EventRelinked, or the link as it
	// was before an EventMoved.
	Previous *Link
	// PreviousSlot is the name of the input an EventMoved link left.
	PreviousSlot string
}

// ConnectionHandler reacts to a connection change. Returning an error rejects
// the change and rolls back the whole transaction.
type ConnectionHandler func(ctx context.Context, g *Graph, ev ConnectionEvent) error

// WidgetEvent is delivered when a widget value changes.
type WidgetEvent struct {
	Node     *Node
	Widget   *Widget
	Previous any
}

// WidgetHandler reacts to a widget value change. Returning an error restores
// the previous value and everything the handlers changed.
type WidgetHandler func(ctx context.Context, g *Graph, ev WidgetEvent) error

func (g *Graph) fireConnection(ctx context.Context, ev ConnectionEvent) error {
	// Copy: a handler may register further handlers on the same node.
	handlers := append([]ConnectionHandler(nil), ev.Node.connHandlers...)
	for _, h := range handlers {
		if err := h(ctx, g, ev); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) fireWidget(ctx context.Context, ev WidgetEvent) error {
	handlers := append([]WidgetHandler(nil), ev.Node.widgetHandlers...)
	for _, h := range handlers {
		if err := h(ctx, g, ev); err != nil {
			return err
		}
	}
	return nil
}
