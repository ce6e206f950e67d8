package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// newSwitch builds a node with inputs x, y, z in group T and a derived output.
func newSwitch(t *testing.T, f *fixture, allowed string) *graph.Node {
	t.Helper()
	node := f.g.AddNode(f.ctx, "Switch")
	for _, name := range []string{"x", "y", "z"} {
		f.apply(t, node, matchInput(name, "T", allowed))
	}
	_, err := f.g.AddOutput(node.ID, &graph.OutputSlot{Name: "out"})
	require.NoError(t, err)
	require.NoError(t, f.engine.RegisterMatchOutput(f.ctx, f.g, node, "T", "out"))
	return node
}

func slotTypes(n *graph.Node) map[string]string {
	out := make(map[string]string, len(n.Inputs)+len(n.Outputs))
	for _, in := range n.Inputs {
		out[in.Name] = in.Type.String()
	}
	for _, o := range n.Outputs {
		out[o.Name] = o.Type.String()
	}
	return out
}

func TestMatchType_ConnectNarrowsSiblings(t *testing.T) {
	f := newFixture(t)
	node := newSwitch(t, f, "A,B,C,D")
	src := f.source(t, "B,C")

	f.connect(t, src, node, "x")

	assert.Equal(t, map[string]string{
		"x":   "A,B,C,D",
		"y":   "B,C",
		"z":   "B,C",
		"out": "B,C",
	}, slotTypes(node))

	f.disconnect(t, node, "x")
	assert.Equal(t, map[string]string{
		"x":   "A,B,C,D",
		"y":   "A,B,C,D",
		"z":   "A,B,C,D",
		"out": "A,B,C,D",
	}, slotTypes(node), "disconnected slots contribute their declared allowance")
}

func TestMatchType_TwoConnections(t *testing.T) {
	f := newFixture(t)
	node := newSwitch(t, f, "A,B,C,D")
	f.connect(t, f.source(t, "B,C"), node, "x")
	f.connect(t, f.source(t, "C,D"), node, "y")

	got := slotTypes(node)
	assert.Equal(t, "C,D", got["x"])
	assert.Equal(t, "B,C", got["y"])
	assert.Equal(t, "C", got["z"])
	assert.Equal(t, "C", got["out"])
}

func TestMatchType_IncompatibleIsRolledBack(t *testing.T) {
	f := newFixture(t)
	node := newSwitch(t, f, "*")
	before := slotTypes(node)

	// A structural output passes the wildcard connection check but cannot
	// be combined with the rest of the group.
	src := f.g.AddNode(f.ctx, "Shape")
	_, err := f.g.AddOutput(src.ID, &graph.OutputSlot{
		Name: "obj",
		Type: types.Structural(cty.Object(map[string]cty.Type{"w": cty.Number})),
	})
	require.NoError(t, err)
	_, err = f.g.Connect(f.ctx, src.ID, 0, node.ID, node.InputIndex("x"))

	require.ErrorIs(t, err, graph.ErrIncompatibleType)
	assert.Equal(t, before, slotTypes(node))
	assert.Empty(t, connectedNames(node))
	assert.Empty(t, f.g.Links())
	assert.Empty(t, src.Outputs[0].Links)
	require.NoError(t, f.g.CheckIntegrity())
	assert.Equal(t, 1, f.rec.matchResults["incompatible"])
}

func TestMatchType_NamesFoldCase(t *testing.T) {
	f := newFixture(t)
	node := newSwitch(t, f, "IMAGE,MASK")

	f.connect(t, f.source(t, "image"), node, "x")

	got := slotTypes(node)
	assert.Equal(t, "IMAGE", got["y"])
	assert.Equal(t, "IMAGE", got["z"])
	assert.True(t, node.Output("out").Type.Equal(types.Parse("IMAGE")))
}

func TestMatchType_DerivedOutputDropsInvalidDownstream(t *testing.T) {
	f := newFixture(t)
	node := newSwitch(t, f, "A,B,C,D")

	sinkA := f.g.AddNode(f.ctx, "SinkA")
	_, err := f.g.AddInput(sinkA.ID, &graph.InputSlot{Name: "in", Type: types.Parse("A")})
	require.NoError(t, err)
	sinkC := f.g.AddNode(f.ctx, "SinkC")
	_, err = f.g.AddInput(sinkC.ID, &graph.InputSlot{Name: "in", Type: types.Parse("C")})
	require.NoError(t, err)

	f.connect(t, node, sinkA, "in")
	kept := f.connect(t, node, sinkC, "in")

	f.connect(t, f.source(t, "B,C"), node, "y")

	assert.False(t, sinkA.Inputs[0].Connected(), "A no longer matches B,C")
	assert.True(t, sinkC.Inputs[0].Connected())
	assert.Equal(t, []graph.LinkID{kept.ID}, node.Outputs[0].Links)
	assert.Equal(t, "B,C", kept.Type.String(), "kept links carry the derived type")
	require.NoError(t, f.g.CheckIntegrity())
}

func TestMatchType_NarrowingReachesDownstreamGroup(t *testing.T) {
	f := newFixture(t)
	first := newSwitch(t, f, "A,B,C,D")
	second := newSwitch(t, f, "A,B,C,D")
	chain := f.connect(t, first, second, "x")

	f.connect(t, f.source(t, "B,C"), first, "x")

	assert.Equal(t, "B,C", chain.Type.String())
	got := slotTypes(second)
	assert.Equal(t, "B,C", got["y"])
	assert.Equal(t, "B,C", got["z"])
	assert.Equal(t, "B,C", got["out"])

	f.disconnect(t, first, "x")
	assert.Equal(t, "A,B,C,D", chain.Type.String())
	assert.Equal(t, map[string]string{
		"x":   "A,B,C,D",
		"y":   "A,B,C,D",
		"z":   "A,B,C,D",
		"out": "A,B,C,D",
	}, slotTypes(second), "widening travels downstream too")
}

func TestMatchType_MoveBetweenGroups(t *testing.T) {
	f := newFixture(t)
	node := f.g.AddNode(f.ctx, "Pair")
	f.apply(t, node, matchInput("a1", "A", "*"))
	f.apply(t, node, matchInput("a2", "A", "*"))
	f.apply(t, node, matchInput("b1", "B", "*"))
	f.apply(t, node, matchInput("b2", "B", "*"))
	link := f.connect(t, f.source(t, "IMAGE"), node, "a1")

	_, err := f.g.MoveLink(f.ctx, link.ID, node.ID, node.InputIndex("b1"))
	require.NoError(t, err)
	require.NoError(t, f.g.CheckIntegrity())

	got := slotTypes(node)
	assert.Equal(t, "*", got["a2"], "the group the link left widens again")
	assert.Equal(t, "IMAGE", got["b2"])
}

func TestMatchType_RelinkReseedsCarriedType(t *testing.T) {
	f := newFixture(t)
	node := newSwitch(t, f, "A,B,C,D")
	f.connect(t, f.source(t, "B,C"), node, "x")
	f.connect(t, f.source(t, "D"), node, "x")

	got := slotTypes(node)
	assert.Equal(t, "D", got["y"])
	assert.Equal(t, "D", got["out"])
}

func TestMatchType_InvalidGroupSpecs(t *testing.T) {
	t.Run("allowances that never agree", func(t *testing.T) {
		f := newFixture(t)
		node := f.g.AddNode(f.ctx, "Bad")
		f.apply(t, node, matchInput("x", "T", "A,B"))

		ok, err := f.engine.Apply(f.ctx, f.g, node, matchInput("y", "T", "C"))
		assert.True(t, ok)
		require.ErrorIs(t, err, config.ErrInvalidSpec)
		assert.Equal(t, []string{"x"}, node.InputNames(), "the failed registration is undone")
	})

	t.Run("structural allowance", func(t *testing.T) {
		f := newFixture(t)
		node := f.g.AddNode(f.ctx, "Bad")
		in := matchInput("x", "T", "")
		in.Dynamic.MatchType.Allowed = types.Structural(cty.Object(map[string]cty.Type{"w": cty.Number}))
		_, err := f.engine.Apply(f.ctx, f.g, node, in)
		require.ErrorIs(t, err, config.ErrInvalidSpec)
		assert.Empty(t, node.Inputs)
	})

	t.Run("output of unknown group", func(t *testing.T) {
		f := newFixture(t)
		node := newSwitch(t, f, "A")
		err := f.engine.RegisterMatchOutput(f.ctx, f.g, node, "U", "out")
		require.ErrorIs(t, err, graph.ErrInvariant)
	})
}

func TestMatchType_GroupsAreIndependent(t *testing.T) {
	f := newFixture(t)
	node := f.g.AddNode(f.ctx, "Pair")
	f.apply(t, node, matchInput("a1", "A", "*"))
	f.apply(t, node, matchInput("a2", "A", "*"))
	f.apply(t, node, matchInput("b1", "B", "*"))

	f.connect(t, f.source(t, "IMAGE"), node, "a1")
	got := slotTypes(node)
	assert.Equal(t, "IMAGE", got["a2"])
	assert.Equal(t, "*", got["b1"])
}
