// This file contains the logic for translating decoded HCL blocks into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
)

// translateNodeDefinition converts a decoded node block into the agnostic model.
func translateNodeDefinition(ctx context.Context, nodeType string, nb *nodeBody) (*config.NodeDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("node_type", nodeType)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL node to internal config model.", "inputs", len(nb.Inputs), "outputs", len(nb.Outputs))

	def := &config.NodeDefinition{
		Type:        nodeType,
		Description: nb.Description,
	}
	for _, in := range nb.Inputs {
		translated, err := translateInputDefinition(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("in node '%s', input '%s': %w", nodeType, in.Name, err)
		}
		def.Inputs = append(def.Inputs, translated)
	}
	for _, out := range nb.Outputs {
		parsedType, err := typeExprToType(ctx, out.Type, "type")
		if err != nil {
			return nil, fmt.Errorf("in node '%s', output '%s': %w", nodeType, out.Name, err)
		}
		def.Outputs = append(def.Outputs, &config.OutputDefinition{
			Name:       out.Name,
			Type:       parsedType,
			MatchGroup: out.MatchType,
		})
	}
	return def, nil
}

// translateInputDefinition processes a single input block, including at most
// one dynamic block.
func translateInputDefinition(ctx context.Context, in *inputBlock) (*config.InputDefinition, error) {
	parsedType, err := typeExprToType(ctx, in.Type, "type")
	if err != nil {
		return nil, err
	}
	widget, err := exprToGo(ctx, in.Widget, "widget")
	if err != nil {
		return nil, err
	}
	def := &config.InputDefinition{
		Name:     in.Name,
		Type:     parsedType,
		Optional: in.Optional,
		Widget:   widget,
	}

	var kinds int
	if in.MatchType != nil {
		kinds++
		allowed, err := typeExprToType(ctx, in.MatchType.Allowed, "allowed")
		if err != nil {
			return nil, err
		}
		def.Dynamic = &config.DynamicSpec{
			Kind:      config.KindMatchType,
			MatchType: &config.MatchTypeSpec{Group: in.MatchType.Group, Allowed: allowed},
		}
	}
	if in.Autogrow != nil {
		kinds++
		spec, err := translateAutogrow(ctx, in.Autogrow)
		if err != nil {
			return nil, err
		}
		def.Dynamic = &config.DynamicSpec{Kind: config.KindAutogrow, Autogrow: spec}
	}
	if in.Combo != nil {
		kinds++
		spec, err := translateCombo(ctx, in.Combo)
		if err != nil {
			return nil, err
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

func translateAutogrow(ctx context.Context, b *autogrowBlock) (*config.AutogrowSpec, error) {
	spec := &config.AutogrowSpec{
		Min:    b.Min,
		Max:    b.Max,
		Prefix: b.Prefix,
		Names:  b.Names,
	}
	for _, t := range b.Inputs {
		tmpl, err := translateSlotTemplate(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("in autogrow input '%s': %w", t.Name, err)
		}
		spec.Template = append(spec.Template, tmpl)
	}
	return spec, nil
}

func translateCombo(ctx context.Context, b *comboBlock) (*config.ComboSpec, error) {
	spec := &config.ComboSpec{}
	for _, o := range b.Options {
		option := &config.ComboOption{Key: o.Key}
		for _, t := range o.Inputs {
			tmpl, err := translateSlotTemplate(ctx, t)
			if err != nil {
				return nil, fmt.Errorf("in option '%s', input '%s': %w", o.Key, t.Name, err)
			}
			option.Inputs = append(option.Inputs, tmpl)
		}
		spec.Options = append(spec.Options, option)
	}
	return spec, nil
}

func translateSlotTemplate(ctx context.Context, t *templateBlock) (*config.SlotTemplate, error) {
	parsedType, err := typeExprToType(ctx, t.Type, "type")
	if err != nil {
		return nil, err
	}
	widget, err := exprToGo(ctx, t.Widget, "widget")
	if err != nil {
		return nil, err
	}
	return &config.SlotTemplate{
		Name:     t.Name,
		Type:     parsedType,
		Optional: t.Optional,
		Widget:   widget,
	}, nil
}

// translateStep converts a decoded step block into the agnostic model.
func translateStep(ctx context.Context, kind config.StepKind, sb *stepBody) (*config.Step, error) {
	value, err := exprToGo(ctx, sb.Value, "value")
	if err != nil {
		return nil, err
	}
	return &config.Step{
		Kind:   kind,
		From:   sb.From,
		To:     sb.To,
		At:     sb.At,
		Value:  value,
		Expect: sb.Expect,
	}, nil
}
