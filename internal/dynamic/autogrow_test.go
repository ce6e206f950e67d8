package dynamic

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/types"
)

func imageTemplate() []*config.SlotTemplate {
	return []*config.SlotTemplate{{Type: types.Parse("IMAGE")}}
}

func newBatch(t *testing.T, f *fixture, minRows, maxRows int) *graph.Node {
	t.Helper()
	node := f.g.AddNode(f.ctx, "ImageBatch")
	f.apply(t, node, autogrowInput("images", &config.AutogrowSpec{
		Min: minRows, Max: maxRows, Prefix: "image", Template: imageTemplate(),
	}))
	return node
}

func rows(t *testing.T, f *fixture, node *graph.Node, group string) int {
	t.Helper()
	n, err := RowCount(f.g, node, group)
	require.NoError(t, err)
	return n
}

func TestAutogrow_GrowAndShrink(t *testing.T) {
	f := newFixture(t)
	node := newBatch(t, f, 1, 4)
	src := f.source(t, "IMAGE")

	assert.Equal(t, []string{"images.image0"}, node.InputNames())
	assert.False(t, node.Inputs[0].Optional, "ordinals below min are mandatory")

	f.connect(t, src, node, "images.image0")
	assert.Equal(t, 2, rows(t, f, node, "images"))
	second := f.connect(t, src, node, "images.image1")
	assert.Equal(t, 3, rows(t, f, node, "images"))
	f.connect(t, src, node, "images.image2")
	assert.Equal(t, 4, rows(t, f, node, "images"))
	assert.True(t, node.Input("images.image3").Optional)

	f.disconnect(t, node, "images.image2")
	assert.Equal(t, 3, rows(t, f, node, "images"))

	// Rows 0 and 1 are connected; disconnecting row 0 compacts row 1 upward.
	f.disconnect(t, node, "images.image0")
	assert.Equal(t, 2, rows(t, f, node, "images"))
	assert.Equal(t, []string{"images.image0", "images.image1"}, node.InputNames())
	assert.Equal(t, []string{"images.image0"}, connectedNames(node))
	assert.Equal(t, node.InputIndex("images.image0"), second.TargetSlot, "the surviving link moved up")

	f.disconnect(t, node, "images.image0")
	assert.Equal(t, 1, rows(t, f, node, "images"), "never below min")
	assert.Equal(t, []string{"images.image0"}, node.InputNames())

	assert.Equal(t, 3, f.rec.grown)
	assert.Equal(t, 3, f.rec.shrunk)
}

func TestAutogrow_NeverExceedsMax(t *testing.T) {
	f := newFixture(t)
	node := newBatch(t, f, 1, 3)
	src := f.source(t, "IMAGE")
	for _, name := range []string{"images.image0", "images.image1", "images.image2"} {
		f.connect(t, src, node, name)
	}
	assert.Equal(t, 3, rows(t, f, node, "images"))
	assert.Equal(t, 3, ConnectedCount(node, "images"))

	// Emptying a middle row of a full group keeps exactly one empty row.
	f.disconnect(t, node, "images.image1")
	assert.Equal(t, 3, rows(t, f, node, "images"))
	assert.Equal(t, []string{"images.image0", "images.image1"}, connectedNames(node))
}

func TestAutogrow_MinRowsAreKept(t *testing.T) {
	f := newFixture(t)
	node := newBatch(t, f, 2, 4)
	src := f.source(t, "IMAGE")

	assert.Equal(t, []string{"images.image0", "images.image1"}, node.InputNames())
	f.connect(t, src, node, "images.image0")
	assert.Equal(t, 2, rows(t, f, node, "images"), "only the last row grows the group")
	f.connect(t, src, node, "images.image1")
	assert.Equal(t, 3, rows(t, f, node, "images"))

	f.disconnect(t, node, "images.image1")
	f.disconnect(t, node, "images.image0")
	assert.Equal(t, 2, rows(t, f, node, "images"))
	assert.Empty(t, connectedNames(node))
}

func TestAutogrow_MoveLink(t *testing.T) {
	f := newFixture(t)
	node := newBatch(t, f, 1, 4)
	src := f.source(t, "IMAGE")
	link := f.connect(t, src, node, "images.image0")
	grown := f.rec.grown

	t.Run("onto the same slot", func(t *testing.T) {
		_, err := f.g.MoveLink(f.ctx, link.ID, node.ID, node.InputIndex("images.image0"))
		require.NoError(t, err)
		assert.Equal(t, 2, rows(t, f, node, "images"))
		assert.Equal(t, grown, f.rec.grown)
		assert.Equal(t, 0, f.rec.shrunk)
	})

	t.Run("onto the growth row", func(t *testing.T) {
		_, err := f.g.MoveLink(f.ctx, link.ID, node.ID, node.InputIndex("images.image1"))
		require.NoError(t, err)
		require.NoError(t, f.g.CheckIntegrity())
		assert.Equal(t, 2, rows(t, f, node, "images"))
		assert.Equal(t, []string{"images.image0"}, connectedNames(node))
	})
}

func TestAutogrow_RemovedSourceCompactsRows(t *testing.T) {
	f := newFixture(t)
	node := newBatch(t, f, 1, 4)
	a, b := f.source(t, "IMAGE"), f.source(t, "IMAGE")
	f.connect(t, a, node, "images.image0")
	kept := f.connect(t, b, node, "images.image1")
	require.Equal(t, 3, rows(t, f, node, "images"))

	require.NoError(t, f.g.RemoveNode(f.ctx, a.ID))
	require.NoError(t, f.g.CheckIntegrity())

	assert.Equal(t, 2, rows(t, f, node, "images"))
	assert.Equal(t, []string{"images.image0"}, connectedNames(node))
	assert.Equal(t, kept.ID, node.Input("images.image0").Link)
	assert.Equal(t, 1, f.rec.shrunk)
}

func TestAutogrow_NamedColumnsAtDeclaredPosition(t *testing.T) {
	f := newFixture(t)
	node := f.g.AddNode(f.ctx, "Composite")
	_, err := f.g.AddInput(node.ID, &graph.InputSlot{Name: "base"})
	require.NoError(t, err)
	f.apply(t, node, autogrowInput("layers", &config.AutogrowSpec{
		Min:   0,
		Max:   3,
		Names: []string{"first", "second", "third"},
		Template: []*config.SlotTemplate{
			{Name: "image", Type: types.Parse("IMAGE")},
			{Name: "mask", Type: types.Parse("MASK"), Widget: 0.5},
		},
	}))
	_, err = f.g.AddInput(node.ID, &graph.InputSlot{Name: "opacity"})
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "layers.first.image", "layers.first.mask", "opacity"}, node.InputNames())
	assert.True(t, node.Input("layers.first.image").Optional)
	require.NotNil(t, node.WidgetFor(node.Input("layers.first.mask")))

	f.connect(t, f.source(t, "MASK"), node, "layers.first.mask")
	assert.Equal(t, []string{
		"base",
		"layers.first.image", "layers.first.mask",
		"layers.second.image", "layers.second.mask",
		"opacity",
	}, node.InputNames())
	assert.Equal(t, 1, ConnectedCount(node, "layers"))

	f.disconnect(t, node, "layers.first.mask")
	assert.Equal(t, []string{"base", "layers.first.image", "layers.first.mask", "opacity"}, node.InputNames())
	assert.Nil(t, node.Widget("layers.second.mask"), "removed rows take their widgets along")
}

func TestAutogrow_IndependentGroups(t *testing.T) {
	f := newFixture(t)
	node := f.g.AddNode(f.ctx, "Two")
	f.apply(t, node, autogrowInput("a", &config.AutogrowSpec{Min: 1, Max: 3, Prefix: "a", Template: imageTemplate()}))
	f.apply(t, node, autogrowInput("b", &config.AutogrowSpec{Min: 1, Max: 3, Prefix: "b", Template: imageTemplate()}))
	src := f.source(t, "IMAGE")

	f.connect(t, src, node, "b.b0")
	f.connect(t, src, node, "a.a0")
	assert.Equal(t, []string{"a.a0", "a.a1", "b.b0", "b.b1"}, node.InputNames())
}

// TestAutogrow_RandomEditing checks the row bounds and layout after random
// connect and disconnect sequences.
func TestAutogrow_RandomEditing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("rows track connections within bounds", prop.ForAll(
		func(maxRows int, ops []int) bool {
			f := newFixture(t)
			node := f.g.AddNode(f.ctx, "ImageBatch")
			ok, err := f.engine.Apply(f.ctx, f.g, node, autogrowInput("images", &config.AutogrowSpec{
				Min: 1, Max: maxRows, Prefix: "image", Template: imageTemplate(),
			}))
			if !ok || err != nil {
				return false
			}
			src := f.source(t, "IMAGE")

			for _, op := range ops {
				idx := (op / 2) % len(node.Inputs)
				if op%2 == 0 {
					if _, err := f.g.Connect(f.ctx, src.ID, 0, node.ID, idx); err != nil {
						return false
					}
				} else if err := f.g.Disconnect(f.ctx, node.ID, idx); err != nil {
					return false
				}
				if f.g.CheckIntegrity() != nil {
					return false
				}

				n, err := RowCount(f.g, node, "images")
				if err != nil {
					return false
				}
				connected := ConnectedCount(node, "images")
				if n != min(connected+1, maxRows) {
					return false
				}
				// Connected rows form a prefix.
				for i, in := range node.Inputs {
					if in.Connected() != (i < connected) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.SliceOfN(30, gen.IntRange(0, 99)),
	))

	properties.TestingRun(t)
}
