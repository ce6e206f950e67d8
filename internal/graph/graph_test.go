package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/socketgrid/internal/testutil"
	"github.com/vk/socketgrid/internal/types"
)

// newSource adds a node with one output per type.
func newSource(t *testing.T, ctx context.Context, g *Graph, outTypes ...string) *Node {
	t.Helper()
	n := g.AddNode(ctx, "Source")
	for _, ty := range outTypes {
		_, err := g.AddOutput(n.ID, &OutputSlot{Name: ty, Type: types.Parse(ty)})
		require.NoError(t, err)
	}
	return n
}

// newSink adds a node with the given inputs, named in0, in1, ...
func newSink(t *testing.T, ctx context.Context, g *Graph, inTypes ...string) *Node {
	t.Helper()
	n := g.AddNode(ctx, "Sink")
	for i, ty := range inTypes {
		_, err := g.AddInput(n.ID, &InputSlot{Name: "in" + string(rune('0'+i)), Type: types.Parse(ty)})
		require.NoError(t, err)
	}
	return n
}

// recorder collects the events delivered to a node.
func recorder(n *Node) *[]ConnectionEvent {
	var events []ConnectionEvent
	n.OnConnectionChange(func(_ context.Context, _ *Graph, ev ConnectionEvent) error {
		events = append(events, ev)
		return nil
	})
	return &events
}

func TestConnect(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "IMAGE", "LATENT")
	dst := newSink(t, ctx, g, "IMAGE,MASK")
	srcEvents, dstEvents := recorder(src), recorder(dst)

	link, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, link.ID, dst.Inputs[0].Link)
	assert.Equal(t, []LinkID{link.ID}, src.Outputs[0].Links)
	assert.Equal(t, "IMAGE", link.Type.String())

	require.Len(t, *dstEvents, 1)
	assert.Equal(t, EventConnected, (*dstEvents)[0].Kind)
	assert.Equal(t, DirInput, (*dstEvents)[0].Direction)
	assert.Equal(t, "in0", (*dstEvents)[0].SlotName)
	require.Len(t, *srcEvents, 1)
	assert.Equal(t, DirOutput, (*srcEvents)[0].Direction)

	_, err = g.Connect(ctx, src.ID, 1, dst.ID, 0)
	assert.ErrorIs(t, err, ErrIncompatibleType)
	assert.Equal(t, link.ID, dst.Inputs[0].Link, "rejected connect must not touch the old link")

	_, err = g.Connect(ctx, src.ID, 5, dst.ID, 0)
	assert.ErrorIs(t, err, ErrInvariant)
	require.NoError(t, g.CheckIntegrity())
}

func TestConnect_ReplacingLinkIsRelinked(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	a := newSource(t, ctx, g, "IMAGE")
	b := newSource(t, ctx, g, "IMAGE")
	dst := newSink(t, ctx, g, "IMAGE")

	first, err := g.Connect(ctx, a.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	aEvents, dstEvents := recorder(a), recorder(dst)

	second, err := g.Connect(ctx, b.ID, 0, dst.ID, 0)
	require.NoError(t, err)

	require.Len(t, *dstEvents, 1)
	assert.Equal(t, EventRelinked, (*dstEvents)[0].Kind)
	assert.Equal(t, first.ID, (*dstEvents)[0].Previous.ID)
	require.Len(t, *aEvents, 1)
	assert.Equal(t, EventDisconnected, (*aEvents)[0].Kind)

	_, still := g.Link(first.ID)
	assert.False(t, still)
	assert.Empty(t, a.Outputs[0].Links)
	assert.Equal(t, second.ID, dst.Inputs[0].Link)
	require.NoError(t, g.CheckIntegrity())
}

func TestDisconnect(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "IMAGE")
	dst := newSink(t, ctx, g, "IMAGE")
	link, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	events := recorder(dst)

	require.NoError(t, g.Disconnect(ctx, dst.ID, 0))
	assert.False(t, dst.Inputs[0].Connected())
	assert.Empty(t, src.Outputs[0].Links)
	_, ok := g.Link(link.ID)
	assert.False(t, ok)
	require.Len(t, *events, 1)
	assert.Equal(t, EventDisconnected, (*events)[0].Kind)
	assert.Equal(t, link.ID, (*events)[0].Link.ID)

	require.NoError(t, g.Disconnect(ctx, dst.ID, 0), "disconnecting an empty input is a no-op")
	assert.Len(t, *events, 1)
}

func TestMoveLink(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "IMAGE")
	dst := newSink(t, ctx, g, "IMAGE", "IMAGE")
	link, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	events := recorder(dst)

	t.Run("same slot is not a change", func(t *testing.T) {
		same, err := g.MoveLink(ctx, link.ID, dst.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, link.ID, same.ID)
		assert.Empty(t, *events)
	})

	t.Run("other slot is a single move", func(t *testing.T) {
		moved, err := g.MoveLink(ctx, link.ID, dst.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, link.ID, moved.ID, "the link keeps its id")
		assert.False(t, dst.Inputs[0].Connected())
		assert.Equal(t, link.ID, dst.Inputs[1].Link)
		require.Len(t, *events, 1)
		ev := (*events)[0]
		assert.Equal(t, EventMoved, ev.Kind)
		assert.Equal(t, "in1", ev.SlotName)
		assert.Equal(t, "in0", ev.PreviousSlot)
		assert.Equal(t, 0, ev.Previous.TargetSlot)
		require.NoError(t, g.CheckIntegrity())
	})

	t.Run("incompatible target is rejected", func(t *testing.T) {
		other := newSink(t, ctx, g, "LATENT")
		_, err := g.MoveLink(ctx, link.ID, other.ID, 0)
		require.ErrorIs(t, err, ErrIncompatibleType)
		assert.Equal(t, link.ID, dst.Inputs[1].Link)
		require.NoError(t, g.CheckIntegrity())
	})
}

func TestMoveLink_AcrossNodes(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	a, b := newSource(t, ctx, g, "IMAGE"), newSource(t, ctx, g, "IMAGE")
	from := newSink(t, ctx, g, "IMAGE")
	to := newSink(t, ctx, g, "IMAGE")
	link, err := g.Connect(ctx, a.ID, 0, from.ID, 0)
	require.NoError(t, err)
	occupant, err := g.Connect(ctx, b.ID, 0, to.ID, 0)
	require.NoError(t, err)
	fromEvents, toEvents, bEvents := recorder(from), recorder(to), recorder(b)

	moved, err := g.MoveLink(ctx, link.ID, to.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, link.ID, moved.ID)
	assert.Equal(t, to.ID, moved.TargetID)
	assert.False(t, from.Inputs[0].Connected())
	_, ok := g.Link(occupant.ID)
	assert.False(t, ok, "the occupant is replaced")
	assert.Empty(t, b.Outputs[0].Links)

	require.Len(t, *fromEvents, 1)
	assert.Equal(t, EventDisconnected, (*fromEvents)[0].Kind)
	require.Len(t, *toEvents, 1)
	assert.Equal(t, EventRelinked, (*toEvents)[0].Kind)
	assert.Equal(t, occupant.ID, (*toEvents)[0].Previous.ID)
	require.Len(t, *bEvents, 1)
	assert.Equal(t, DirOutput, (*bEvents)[0].Direction)
	require.NoError(t, g.CheckIntegrity())
}

func TestRetypeLink(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "IMAGE,MASK")
	dst := newSink(t, ctx, g, "*")
	link, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	events := recorder(dst)

	require.NoError(t, g.RetypeLink(ctx, link.ID, types.Parse("MASK,IMAGE")))
	assert.Empty(t, *events, "an equal type is not a change")

	require.NoError(t, g.RetypeLink(ctx, link.ID, types.Parse("MASK")))
	assert.Equal(t, "MASK", link.Type.String())
	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, EventRelinked, ev.Kind)
	assert.Equal(t, link.ID, ev.Link.ID)
	assert.Equal(t, "IMAGE,MASK", ev.Previous.Type.String())

	assert.ErrorIs(t, g.RetypeLink(ctx, 99, types.Wildcard), ErrInvariant)
}

func TestTransactionRollback(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "IMAGE")
	dst := newSink(t, ctx, g, "IMAGE")
	rejection := errors.New("nope")

	dst.OnConnectionChange(func(_ context.Context, g *Graph, ev ConnectionEvent) error {
		// Reshape the node before rejecting, to prove the snapshot restores it.
		if _, err := g.AddInput(ev.Node.ID, &InputSlot{Name: "extra", Type: types.Wildcard}); err != nil {
			return err
		}
		return rejection
	})

	_, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.ErrorIs(t, err, rejection)
	assert.Equal(t, []string{"in0"}, dst.InputNames())
	assert.False(t, dst.Inputs[0].Connected())
	assert.Empty(t, src.Outputs[0].Links)
	assert.Empty(t, g.Links())
	require.NoError(t, g.CheckIntegrity())
}

func TestSpliceRenumbersLinks(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "*")
	dst := newSink(t, ctx, g, "*", "*", "*")
	l0, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	l2, err := g.Connect(ctx, src.ID, 0, dst.ID, 2)
	require.NoError(t, err)

	require.NoError(t, g.InsertInputs(dst.ID, 1, &InputSlot{Name: "a"}, &InputSlot{Name: "b"}))
	assert.Equal(t, []string{"in0", "a", "b", "in1", "in2"}, dst.InputNames())
	assert.Equal(t, 4, l2.TargetSlot)

	removed, err := g.RemoveInputs(dst.ID, 0, 1)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	_, ok := g.Link(l0.ID)
	assert.False(t, ok, "removing a slot drops its link")
	assert.Equal(t, 3, l2.TargetSlot)

	err = g.InsertInputs(dst.ID, 0, &InputSlot{Name: "a"})
	assert.ErrorIs(t, err, ErrInvariant, "names stay unique")

	_, err = g.SpliceInputs(dst.ID, 0, 2, &InputSlot{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "in1", "in2"}, dst.InputNames())
	assert.Equal(t, 2, l2.TargetSlot)
	require.NoError(t, g.CheckIntegrity())
}

func TestDetachAttach(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "*")
	dst := newSink(t, ctx, g, "*", "*")
	link, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)

	require.NoError(t, g.DetachLink(link.ID))
	assert.False(t, dst.Inputs[0].Connected())
	assert.ErrorIs(t, g.CheckIntegrity(), ErrInvariant, "a detached link is incomplete")

	require.NoError(t, g.AttachLink(link.ID, dst.ID, 1))
	assert.Equal(t, link.ID, dst.Inputs[1].Link)
	require.NoError(t, g.CheckIntegrity())

	require.NoError(t, g.RetargetLink(link.ID, 0))
	assert.Equal(t, link.ID, dst.Inputs[0].Link)
	assert.False(t, dst.Inputs[1].Connected())
	require.NoError(t, g.CheckIntegrity())
}

func TestRemoveNode(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	up := newSource(t, ctx, g, "*")
	src := newSource(t, ctx, g, "*")
	_, err := g.AddInput(src.ID, &InputSlot{Name: "in", Type: types.Wildcard})
	require.NoError(t, err)
	dst := newSink(t, ctx, g, "*")
	_, err = g.Connect(ctx, up.ID, 0, src.ID, 0)
	require.NoError(t, err)
	_, err = g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	g.SetState(src.ID, "k", testState{n: 1})
	upEvents, dstEvents := recorder(up), recorder(dst)

	require.NoError(t, g.RemoveNode(ctx, src.ID))
	assert.False(t, dst.Inputs[0].Connected())
	assert.Empty(t, up.Outputs[0].Links)
	assert.Empty(t, g.Links())
	_, ok := g.State(src.ID, "k")
	assert.False(t, ok)
	assert.Len(t, g.Nodes(), 2)
	require.NoError(t, g.CheckIntegrity())

	require.Len(t, *dstEvents, 1)
	assert.Equal(t, EventDisconnected, (*dstEvents)[0].Kind)
	assert.Equal(t, DirInput, (*dstEvents)[0].Direction)
	require.Len(t, *upEvents, 1)
	assert.Equal(t, DirOutput, (*upEvents)[0].Direction)

	assert.ErrorIs(t, g.RemoveNode(ctx, src.ID), ErrInvariant)
}

func TestRemoveNode_RejectedByNeighbour(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	src := newSource(t, ctx, g, "*")
	dst := newSink(t, ctx, g, "*")
	link, err := g.Connect(ctx, src.ID, 0, dst.ID, 0)
	require.NoError(t, err)
	rejection := errors.New("keep me")
	dst.OnConnectionChange(func(context.Context, *Graph, ConnectionEvent) error { return rejection })

	require.ErrorIs(t, g.RemoveNode(ctx, src.ID), rejection)
	assert.Len(t, g.Nodes(), 2, "the removal is rolled back")
	assert.Equal(t, link.ID, dst.Inputs[0].Link)
	require.NoError(t, g.CheckIntegrity())
}

type testState struct{ n int }

func (s testState) Clone() State { return s }

func TestSetWidgetValue(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	n := g.AddNode(ctx, "Combo")
	require.NoError(t, g.AddWidget(n.ID, &Widget{Name: "mode", Value: "a", Options: []string{"a", "b"}}))

	var seen []any
	n.OnWidgetChange(func(_ context.Context, _ *Graph, ev WidgetEvent) error {
		seen = append(seen, ev.Previous)
		if ev.Widget.Value == "b" {
			return errors.New("refused")
		}
		return nil
	})

	require.NoError(t, g.SetWidgetValue(ctx, n.ID, "mode", ""))
	assert.Equal(t, "", n.Widget("mode").Value)

	err := g.SetWidgetValue(ctx, n.ID, "mode", "b")
	require.Error(t, err)
	assert.Equal(t, "", n.Widget("mode").Value, "refused change is rolled back")

	assert.ErrorIs(t, g.SetWidgetValue(ctx, n.ID, "mode", "zzz"), ErrInvalidValue)
	assert.ErrorIs(t, g.SetWidgetValue(ctx, n.ID, "missing", "a"), ErrInvariant)
	assert.Equal(t, []any{"a", ""}, seen)
}

func TestNodeLookups(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := New()
	n := newSink(t, ctx, g, "INT")
	n.Inputs[0].Widget = "in0"
	require.NoError(t, g.AddWidget(n.ID, &Widget{Name: "in0", Value: 3}))
	require.NoError(t, g.AddWidget(n.ID, &Widget{Name: "seed", Value: 1}))

	assert.Equal(t, 0, n.InputIndex("in0"))
	assert.Equal(t, -1, n.InputIndex("nope"))
	assert.Nil(t, n.Output("nope"))
	assert.Equal(t, 3, n.WidgetFor(n.Inputs[0]).Value)

	require.NoError(t, g.RemoveWidget(n.ID, "in0"))
	assert.Nil(t, n.WidgetFor(n.Inputs[0]), "a removed widget is not reachable through its socket")
	assert.Equal(t, [2]float64{DefaultWidth, TitleHeight + 2*SlotHeight}, n.ComputeSize())
}
