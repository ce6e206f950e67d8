package config

import "github.com/vk/socketgrid/internal/types"

// Model is the unified, format-agnostic representation of everything loaded
// from definition files.
type Model struct {
	Nodes    map[string]*NodeDefinition
	Scenario *Scenario
}

// NewModel returns an empty model ready to be merged into.
func NewModel() *Model {
	return &Model{
		Nodes:    make(map[string]*NodeDefinition),
		Scenario: &Scenario{},
	}
}

// Merge copies the definitions and steps of other into m. A node type
// declared twice is an ErrInvalidSpec.
func (m *Model) Merge(other *Model) error {
	for name, def := range other.Nodes {
		if _, dup := m.Nodes[name]; dup {
			return invalid("node %q is defined more than once", name)
		}
		m.Nodes[name] = def
	}
	if other.Scenario != nil {
		m.Scenario.Steps = append(m.Scenario.Steps, other.Scenario.Steps...)
	}
	return nil
}

// --- Node Definition Models ---

// NodeDefinition declares the sockets of one node type. Inputs and outputs
// are ordered the way they appear on the node.
type NodeDefinition struct {
	Type        string              `validate:"required,max=100"`
	Description string              `validate:"max=1000"`
	Inputs      []*InputDefinition  `validate:"dive,required"`
	Outputs     []*OutputDefinition `validate:"dive,required"`
}

// InputDefinition declares one input. A non-nil Dynamic turns it into a
// group that the dynamic managers expand at build time.
type InputDefinition struct {
	Name     string `validate:"required,max=100"`
	Type     types.Type
	Optional bool
	// Widget is the default value of the widget driven by this input. Nil
	// means the input has no widget.
	Widget  any
	Dynamic *DynamicSpec
}

// OutputDefinition declares one output. MatchGroup, when set, derives the
// output type from the named match-type group.
type OutputDefinition struct {
	Name       string `validate:"required,max=100"`
	Type       types.Type
	MatchGroup string `validate:"max=100"`
}

// DynamicKind names one of the dynamic input managers.
type DynamicKind string

const (
	KindMatchType    DynamicKind = "match_type"
	KindAutogrow     DynamicKind = "autogrow"
	KindDynamicCombo DynamicKind = "dynamic_combo"
)

// DynamicSpec is the declarative payload of a dynamic input. Exactly the
// field matching Kind is set; an unrecognised Kind carries no payload.
type DynamicSpec struct {
	Kind      DynamicKind `validate:"required"`
	MatchType *MatchTypeSpec
	Autogrow  *AutogrowSpec
	Combo     *ComboSpec
}

// MatchTypeSpec places the input in a group of mutually constrained slots.
type MatchTypeSpec struct {
	Group   string `validate:"required,max=100"`
	Allowed types.Type
}

// AutogrowSpec declares a repeated block of inputs. Each row holds one slot
// per Template entry.
type AutogrowSpec struct {
	Min    int    `validate:"gte=0,max=1000"`
	Max    int    `validate:"gte=1,gtefield=Min,max=1000"`
	Prefix string `validate:"max=100"`
	// Names overrides Prefix with one explicit name per row.
	Names    []string        `validate:"omitempty,dive,required"`
	Template []*SlotTemplate `validate:"required,min=1,dive,required"`
}

// ComboSpec binds a set of sockets to each value of a combo selector.
type ComboSpec struct {
	Options []*ComboOption `validate:"required,min=1,dive,required"`
}

// ComboOption is one selectable value and the sockets it installs.
type ComboOption struct {
	Key    string          `validate:"required,max=100"`
	Inputs []*SlotTemplate `validate:"dive,required"`
}

// SlotTemplate declares an input created by a dynamic manager.
type SlotTemplate struct {
	Name     string `validate:"max=100"`
	Type     types.Type
	Optional bool
	Widget   any
}

// Keys lists the option keys in declared order.
func (c *ComboSpec) Keys() []string {
	keys := make([]string, len(c.Options))
	for i, o := range c.Options {
		keys[i] = o.Key
	}
	return keys
}

// Option returns the option with the given key, or nil.
func (c *ComboSpec) Option(key string) *ComboOption {
	for _, o := range c.Options {
		if o.Key == key {
			return o
		}
	}
	return nil
}

// --- Scenario Models ---

// Scenario is a scripted editing session replayed against a graph.
type Scenario struct {
	Steps []*Step `validate:"dive,required"`
}

// StepKind names a scenario action.
type StepKind string

const (
	StepAdd        StepKind = "add"
	StepConnect    StepKind = "connect"
	StepDisconnect StepKind = "disconnect"
	StepMove       StepKind = "move"
	StepSet        StepKind = "set"
	StepRemove     StepKind = "remove"
)

// Step is one scenario action. Slot references are written as
// "<node>.<slot name>", for example "n1.images.image0". A remove step names
// the node alone in At.
type Step struct {
	Kind     StepKind `validate:"required,oneof=add connect disconnect move set remove"`
	Name     string   `validate:"required_if=Kind add"`
	NodeType string   `validate:"required_if=Kind add"`
	From     string   `validate:"required_if=Kind connect,required_if=Kind move"`
	To       string   `validate:"required_if=Kind connect,required_if=Kind move"`
	At       string   `validate:"required_if=Kind disconnect,required_if=Kind set,required_if=Kind remove"`
	Value    any
	// Expect, when set, is the error class the step must produce:
	// "cannot_connect" or "invalid".
	Expect string `validate:"omitempty,oneof=cannot_connect invalid"`
}
