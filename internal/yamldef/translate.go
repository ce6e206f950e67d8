package yamldef

import (
	"context"
	"fmt"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
)

// translate converts a decoded document into the agnostic model.
func translate(ctx context.Context, root *fileRoot) (*config.Model, error) {
	model := config.NewModel()
	for _, n := range root.Nodes {
		if n == nil {
			continue
		}
		def, err := translateNode(n)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(&config.Model{Nodes: map[string]*config.NodeDefinition{def.Type: def}}); err != nil {
			return nil, err
		}
	}
	for _, s := range root.Scenario {
		if s == nil {
			continue
		}
		model.Scenario.Steps = append(model.Scenario.Steps, &config.Step{
			Kind:     config.StepKind(s.Op),
			Name:     s.Name,
			NodeType: s.Type,
			From:     s.From,
			To:       s.To,
			At:       s.At,
			Value:    s.Value,
			Expect:   s.Expect,
		})
	}
	ctxlog.FromContext(ctx).Debug("Translated YAML document.", "nodes", len(model.Nodes), "steps", len(model.Scenario.Steps))
	return model, nil
}

func translateNode(n *nodeYAML) (*config.NodeDefinition, error) {
	def := &config.NodeDefinition{Type: n.Type, Description: n.Description}
	for _, in := range n.Inputs {
		translated, err := translateInput(in)
		if err != nil {
			return nil, fmt.Errorf("in node '%s', input '%s': %w", n.Type, in.Name, err)
		}
		def.Inputs = append(def.Inputs, translated)
	}
	for _, out := range n.Outputs {
		def.Outputs = append(def.Outputs, &config.OutputDefinition{
			Name:       out.Name,
			Type:       out.Type.Type,
			MatchGroup: out.MatchType,
		})
	}
	return def, nil
}

func translateInput(in *inputYAML) (*config.InputDefinition, error) {
	def := &config.InputDefinition{
		Name:     in.Name,
		Type:     in.Type.Type,
		Optional: in.Optional,
		Widget:   in.Widget,
	}

	var kinds int
	if in.MatchType != nil {
		kinds++
		def.Dynamic = &config.DynamicSpec{
			Kind:      config.KindMatchType,
			MatchType: &config.MatchTypeSpec{Group: in.MatchType.Group, Allowed: in.MatchType.Allowed.Type},
		}
	}
	if in.Autogrow != nil {
		kinds++
		def.Dynamic = &config.DynamicSpec{Kind: config.KindAutogrow, Autogrow: &config.AutogrowSpec{
			Min:      in.Autogrow.Min,
			Max:      in.Autogrow.Max,
			Prefix:   in.Autogrow.Prefix,
			Names:    in.Autogrow.Names,
			Template: translateTemplates(in.Autogrow.Inputs),
		}}
	}
	if in.Combo != nil {
		kinds++
		spec := &config.ComboSpec{}
		for _, o := range in.Combo.Options {
			spec.Options = append(spec.Options, &config.ComboOption{Key: o.Key, Inputs: translateTemplates(o.Inputs)})
		}
		def.Dynamic = &config.DynamicSpec{Kind: config.KindDynamicCombo, Combo: spec}
	}
	if in.Dynamic != "" {
		kinds++
		def.Dynamic = &config.DynamicSpec{Kind: config.DynamicKind(in.Dynamic)}
	}
	if kinds > 1 {
		return nil, fmt.Errorf("%w: an input can declare only one dynamic kind", config.ErrInvalidSpec)
	}
	return def, nil
}

func translateTemplates(in []*templateYAML) []*config.SlotTemplate {
	out := make([]*config.SlotTemplate, 0, len(in))
	for _, t := range in {
		out = append(out, &config.SlotTemplate{
			Name:     t.Name,
			Type:     t.Type.Type,
			Optional: t.Optional,
			Widget:   t.Widget,
		})
	}
	return out
}
