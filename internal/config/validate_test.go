package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/socketgrid/internal/types"
)

func autogrowNode(spec *AutogrowSpec) *NodeDefinition {
	return &NodeDefinition{
		Type: "Batch",
		Inputs: []*InputDefinition{{
			Name:    "images",
			Dynamic: &DynamicSpec{Kind: KindAutogrow, Autogrow: spec},
		}},
	}
}

func TestValidateNode(t *testing.T) {
	image := []*SlotTemplate{{Type: types.Parse("IMAGE")}}

	testCases := []struct {
		name    string
		def     *NodeDefinition
		wantErr string
	}{
		{
			name: "plain node",
			def: &NodeDefinition{
				Type:    "Load",
				Inputs:  []*InputDefinition{{Name: "path", Widget: "a.png"}},
				Outputs: []*OutputDefinition{{Name: "IMAGE", Type: types.Parse("IMAGE")}},
			},
		},
		{
			name:    "missing type",
			def:     &NodeDefinition{},
			wantErr: "Type: field is required",
		},
		{
			name: "duplicate input",
			def: &NodeDefinition{
				Type:   "Dup",
				Inputs: []*InputDefinition{{Name: "a"}, {Name: "a"}},
			},
			wantErr: `input "a" is declared more than once`,
		},
		{
			name: "bad slot name",
			def: &NodeDefinition{
				Type:   "Bad",
				Inputs: []*InputDefinition{{Name: "a..b"}},
			},
			wantErr: "empty segment",
		},
		{
			name: "autogrow ok",
			def:  autogrowNode(&AutogrowSpec{Min: 1, Max: 4, Prefix: "image", Template: image}),
		},
		{
			name:    "autogrow max below min",
			def:     autogrowNode(&AutogrowSpec{Min: 3, Max: 2, Prefix: "image", Template: image}),
			wantErr: "must not be less than Min",
		},
		{
			name:    "autogrow without template",
			def:     autogrowNode(&AutogrowSpec{Min: 1, Max: 2, Prefix: "image"}),
			wantErr: "Template: field is required",
		},
		{
			name:    "autogrow too few names",
			def:     autogrowNode(&AutogrowSpec{Min: 1, Max: 3, Names: []string{"a", "b"}, Template: image}),
			wantErr: "declares 2 names for up to 3 rows",
		},
		{
			name:    "autogrow without names or prefix",
			def:     autogrowNode(&AutogrowSpec{Min: 1, Max: 3, Template: image}),
			wantErr: "either names or a prefix",
		},
		{
			name: "autogrow unnamed columns",
			def: autogrowNode(&AutogrowSpec{Min: 1, Max: 3, Prefix: "row", Template: []*SlotTemplate{
				{Name: "image"}, {Name: ""},
			}}),
			wantErr: "single name segment",
		},
		{
			name: "match output with unknown group",
			def: &NodeDefinition{
				Type: "Switch",
				Inputs: []*InputDefinition{{
					Name:    "on_true",
					Dynamic: &DynamicSpec{Kind: KindMatchType, MatchType: &MatchTypeSpec{Group: "T"}},
				}},
				Outputs: []*OutputDefinition{{Name: "out", MatchGroup: "U"}},
			},
			wantErr: `unknown match group "U"`,
		},
		{
			name: "combo duplicate option",
			def: &NodeDefinition{
				Type: "Resize",
				Inputs: []*InputDefinition{{
					Name: "mode",
					Dynamic: &DynamicSpec{Kind: KindDynamicCombo, Combo: &ComboSpec{Options: []*ComboOption{
						{Key: "a"}, {Key: "a"},
					}}},
				}},
			},
			wantErr: `option "a" is declared more than once`,
		},
		{
			name: "unknown kind passes",
			def: &NodeDefinition{
				Type:   "Future",
				Inputs: []*InputDefinition{{Name: "x", Dynamic: &DynamicSpec{Kind: "teleport"}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNode(tc.def)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidSpec)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateStep(t *testing.T) {
	testCases := []struct {
		name  string
		step  *Step
		valid bool
	}{
		{"add", &Step{Kind: StepAdd, Name: "n1", NodeType: "Switch"}, true},
		{"add without type", &Step{Kind: StepAdd, Name: "n1"}, false},
		{"connect", &Step{Kind: StepConnect, From: "n0.IMAGE", To: "n1.on_true"}, true},
		{"move without target", &Step{Kind: StepMove, From: "n1.a"}, false},
		{"set without slot", &Step{Kind: StepSet, Value: "x"}, false},
		{"unknown kind", &Step{Kind: "paint"}, false},
		{"bad expectation", &Step{Kind: StepDisconnect, At: "n1.a", Expect: "maybe"}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStep(tc.step)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSpec)
			}
		})
	}
}

func TestModelMerge(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.Merge(&Model{
		Nodes:    map[string]*NodeDefinition{"A": {Type: "A"}},
		Scenario: &Scenario{Steps: []*Step{{Kind: StepAdd, Name: "n0", NodeType: "A"}}},
	}))
	require.NoError(t, m.Validate())
	assert.Len(t, m.Scenario.Steps, 1)

	err := m.Merge(&Model{Nodes: map[string]*NodeDefinition{"A": {Type: "A"}}})
	assert.ErrorIs(t, err, ErrInvalidSpec)
}
