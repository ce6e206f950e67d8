package dynamic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/testutil"
	"github.com/vk/socketgrid/internal/types"
)

// countingRecorder records what the managers report.
type countingRecorder struct {
	grown, shrunk int
	rebinds       int
	matchResults  map[string]int
}

func (r *countingRecorder) ObserveAutogrow(op string, rows int) {
	if op == "grow" {
		r.grown += rows
	} else {
		r.shrunk += rows
	}
}

func (r *countingRecorder) ObserveComboRebind(string) { r.rebinds++ }

func (r *countingRecorder) ObserveMatchType(result string) {
	if r.matchResults == nil {
		r.matchResults = make(map[string]int)
	}
	r.matchResults[result]++
}

type fixture struct {
	ctx    context.Context
	g      *graph.Graph
	engine *Engine
	rec    *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, _ := testutil.Context(t)
	rec := &countingRecorder{}
	return &fixture{ctx: ctx, g: graph.New(), engine: NewEngine(rec), rec: rec}
}

// source adds a node with one output per type expression.
func (f *fixture) source(t *testing.T, outTypes ...string) *graph.Node {
	t.Helper()
	n := f.g.AddNode(f.ctx, "Source")
	for _, ty := range outTypes {
		_, err := f.g.AddOutput(n.ID, &graph.OutputSlot{Name: ty, Type: types.Parse(ty)})
		require.NoError(t, err)
	}
	return n
}

// apply runs Apply and requires the kind to be recognised.
func (f *fixture) apply(t *testing.T, node *graph.Node, in *config.InputDefinition) {
	t.Helper()
	ok, err := f.engine.Apply(f.ctx, f.g, node, in)
	require.NoError(t, err)
	require.True(t, ok)
}

// connect links src's first output to the named input of dst.
func (f *fixture) connect(t *testing.T, src, dst *graph.Node, input string) *graph.Link {
	t.Helper()
	idx := dst.InputIndex(input)
	require.GreaterOrEqual(t, idx, 0, "input %q not found in %v", input, dst.InputNames())
	link, err := f.g.Connect(f.ctx, src.ID, 0, dst.ID, idx)
	require.NoError(t, err)
	require.NoError(t, f.g.CheckIntegrity())
	return link
}

// disconnect removes the link on the named input of dst.
func (f *fixture) disconnect(t *testing.T, dst *graph.Node, input string) {
	t.Helper()
	idx := dst.InputIndex(input)
	require.GreaterOrEqual(t, idx, 0, "input %q not found in %v", input, dst.InputNames())
	require.NoError(t, f.g.Disconnect(f.ctx, dst.ID, idx))
	require.NoError(t, f.g.CheckIntegrity())
}

func matchInput(name, group, allowed string) *config.InputDefinition {
	return &config.InputDefinition{
		Name: name,
		Dynamic: &config.DynamicSpec{
			Kind:      config.KindMatchType,
			MatchType: &config.MatchTypeSpec{Group: group, Allowed: types.Parse(allowed)},
		},
	}
}

func autogrowInput(name string, spec *config.AutogrowSpec) *config.InputDefinition {
	return &config.InputDefinition{
		Name:    name,
		Dynamic: &config.DynamicSpec{Kind: config.KindAutogrow, Autogrow: spec},
	}
}

func comboInput(name string, initial any, options ...*config.ComboOption) *config.InputDefinition {
	return &config.InputDefinition{
		Name:    name,
		Widget:  initial,
		Dynamic: &config.DynamicSpec{Kind: config.KindDynamicCombo, Combo: &config.ComboSpec{Options: options}},
	}
}

func connectedNames(n *graph.Node) []string {
	var out []string
	for _, in := range n.Inputs {
		if in.Connected() {
			out = append(out, in.Name)
		}
	}
	return out
}
