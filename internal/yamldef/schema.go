package yamldef

import (
	"fmt"

	"github.com/vk/socketgrid/internal/types"
	"gopkg.in/yaml.v3"
)

// fileRoot is the top-level document.
type fileRoot struct {
	Nodes    []*nodeYAML `yaml:"nodes"`
	Scenario []*stepYAML `yaml:"scenario"`
}

type nodeYAML struct {
	Type        string        `yaml:"type"`
	Description string        `yaml:"description,omitempty"`
	Inputs      []*inputYAML  `yaml:"inputs,omitempty"`
	Outputs     []*outputYAML `yaml:"outputs,omitempty"`
}

type inputYAML struct {
	Name      string         `yaml:"name"`
	Type      typeYAML       `yaml:"type,omitempty"`
	Optional  bool           `yaml:"optional,omitempty"`
	Widget    any            `yaml:"widget,omitempty"`
	MatchType *matchTypeYAML `yaml:"match_type,omitempty"`
	Autogrow  *autogrowYAML  `yaml:"autogrow,omitempty"`
	Combo     *comboYAML     `yaml:"dynamic_combo,omitempty"`
	Dynamic   string         `yaml:"dynamic,omitempty"`
}

type outputYAML struct {
	Name      string   `yaml:"name"`
	Type      typeYAML `yaml:"type,omitempty"`
	MatchType string   `yaml:"match_type,omitempty"`
}

type matchTypeYAML struct {
	Group   string   `yaml:"group"`
	Allowed typeYAML `yaml:"allowed,omitempty"`
}

type autogrowYAML struct {
	Min    int             `yaml:"min,omitempty"`
	Max    int             `yaml:"max"`
	Prefix string          `yaml:"prefix,omitempty"`
	Names  []string        `yaml:"names,omitempty"`
	Inputs []*templateYAML `yaml:"inputs"`
}

type comboYAML struct {
	Options []*optionYAML `yaml:"options"`
}

type optionYAML struct {
	Key    string          `yaml:"key"`
	Inputs []*templateYAML `yaml:"inputs,omitempty"`
}

type templateYAML struct {
	Name     string   `yaml:"name"`
	Type     typeYAML `yaml:"type,omitempty"`
	Optional bool     `yaml:"optional,omitempty"`
	Widget   any      `yaml:"widget,omitempty"`
}

type stepYAML struct {
	Op     string `yaml:"op"`
	Name   string `yaml:"name,omitempty"`
	Type   string `yaml:"type,omitempty"`
	From   string `yaml:"from,omitempty"`
	To     string `yaml:"to,omitempty"`
	At     string `yaml:"at,omitempty"`
	Value  any    `yaml:"value,omitempty"`
	Expect string `yaml:"expect,omitempty"`
}

// typeYAML accepts a socket type written as a scalar or a sequence of names.
type typeYAML struct {
	types.Type
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *typeYAML) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		t.Type = types.Parse(value.Value)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return fmt.Errorf("line %d: a type list must contain only strings: %w", value.Line, err)
		}
		t.Type = types.Of(names...)
		return nil
	default:
		return fmt.Errorf("line %d: a type must be a string or a list of strings", value.Line)
	}
}

// IsZero lets omitempty drop wildcard types.
func (t typeYAML) IsZero() bool {
	return t.IsWildcard()
}

// MarshalYAML implements yaml.Marshaler.
func (t typeYAML) MarshalYAML() (any, error) {
	if t.IsStructural() {
		return nil, fmt.Errorf("structural type %s cannot be written as YAML", t.String())
	}
	return t.String(), nil
}
