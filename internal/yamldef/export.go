package yamldef

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vk/socketgrid/internal/config"
	"gopkg.in/yaml.v3"
)

// Marshal writes the node definitions of a model as a YAML document that
// Load reads back. Nodes are sorted by type; scenario steps are not written.
func Marshal(model *config.Model) ([]byte, error) {
	names := make([]string, 0, len(model.Nodes))
	for name := range model.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	root := fileRoot{}
	for _, name := range names {
		def := model.Nodes[name]
		n := &nodeYAML{Type: def.Type, Description: def.Description}
		for _, in := range def.Inputs {
			n.Inputs = append(n.Inputs, exportInput(in))
		}
		for _, out := range def.Outputs {
			n.Outputs = append(n.Outputs, &outputYAML{
				Name:      out.Name,
				Type:      typeYAML{out.Type},
				MatchType: out.MatchGroup,
			})
		}
		root.Nodes = append(root.Nodes, n)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportInput(in *config.InputDefinition) *inputYAML {
	out := &inputYAML{
		Name:     in.Name,
		Type:     typeYAML{in.Type},
		Optional: in.Optional,
		Widget:   in.Widget,
	}
	if in.Dynamic == nil {
		return out
	}
	switch d := in.Dynamic; {
	case d.MatchType != nil:
		out.MatchType = &matchTypeYAML{Group: d.MatchType.Group, Allowed: typeYAML{d.MatchType.Allowed}}
	case d.Autogrow != nil:
		out.Autogrow = &autogrowYAML{
			Min:    d.Autogrow.Min,
			Max:    d.Autogrow.Max,
			Prefix: d.Autogrow.Prefix,
			Names:  d.Autogrow.Names,
			Inputs: exportTemplates(d.Autogrow.Template),
		}
	case d.Combo != nil:
		out.Combo = &comboYAML{}
		for _, o := range d.Combo.Options {
			out.Combo.Options = append(out.Combo.Options, &optionYAML{Key: o.Key, Inputs: exportTemplates(o.Inputs)})
		}
	default:
		out.Dynamic = string(d.Kind)
	}
	return out
}

func exportTemplates(in []*config.SlotTemplate) []*templateYAML {
	out := make([]*templateYAML, 0, len(in))
	for _, t := range in {
		out = append(out, &templateYAML{
			Name:     t.Name,
			Type:     typeYAML{t.Type},
			Optional: t.Optional,
			Widget:   t.Widget,
		})
	}
	return out
}
