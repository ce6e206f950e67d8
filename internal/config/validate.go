package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/vk/socketgrid/internal/slotpath"
)

// ErrInvalidSpec marks a definition or scenario that fails structural
// validation. It aborts the construction of the affected node.
var ErrInvalidSpec = errors.New("invalid spec")

// validate is a singleton validator instance.
var validate = validator.New()

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpec, fmt.Sprintf(format, args...))
}

// Validate checks every node definition and scenario step in the model.
func (m *Model) Validate() error {
	for name, def := range m.Nodes {
		if def.Type != name {
			return invalid("node %q is registered under %q", def.Type, name)
		}
		if err := ValidateNode(def); err != nil {
			return err
		}
	}
	if m.Scenario != nil {
		for i, step := range m.Scenario.Steps {
			if err := ValidateStep(step); err != nil {
				return fmt.Errorf("scenario step %d: %w", i+1, err)
			}
		}
	}
	return nil
}

// ValidateNode validates a node definition using struct tags followed by the
// checks tags cannot express: unique names, well-formed slot names and
// consistent dynamic payloads.
func ValidateNode(def *NodeDefinition) error {
	if def == nil {
		return invalid("node definition cannot be nil")
	}
	if err := validate.Struct(def); err != nil {
		return fmt.Errorf("node %q: %w", def.Type, formatValidationError(err))
	}

	inputs := make(map[string]struct{}, len(def.Inputs))
	groups := make(map[string]struct{})
	for _, in := range def.Inputs {
		if _, err := slotpath.Parse(in.Name); err != nil {
			return invalid("node %q: %v", def.Type, err)
		}
		if _, dup := inputs[in.Name]; dup {
			return invalid("node %q: input %q is declared more than once", def.Type, in.Name)
		}
		inputs[in.Name] = struct{}{}
		if in.Dynamic == nil {
			continue
		}
		if err := validateDynamic(in); err != nil {
			return fmt.Errorf("node %q, input %q: %w", def.Type, in.Name, err)
		}
		if in.Dynamic.MatchType != nil {
			groups[in.Dynamic.MatchType.Group] = struct{}{}
		}
	}

	outputs := make(map[string]struct{}, len(def.Outputs))
	for _, out := range def.Outputs {
		if _, err := slotpath.Parse(out.Name); err != nil {
			return invalid("node %q: %v", def.Type, err)
		}
		if _, dup := outputs[out.Name]; dup {
			return invalid("node %q: output %q is declared more than once", def.Type, out.Name)
		}
		outputs[out.Name] = struct{}{}
		if out.MatchGroup == "" {
			continue
		}
		if _, ok := groups[out.MatchGroup]; !ok {
			return invalid("node %q: output %q derives from unknown match group %q", def.Type, out.Name, out.MatchGroup)
		}
	}
	return nil
}

// ValidateDynamic checks a single dynamic input. Unrecognised kinds pass: the
// caller decides what to do with them.
func ValidateDynamic(in *InputDefinition) error {
	if in == nil || in.Dynamic == nil {
		return invalid("input has no dynamic spec")
	}
	if err := validate.Struct(in); err != nil {
		return formatValidationError(err)
	}
	return validateDynamic(in)
}

func validateDynamic(in *InputDefinition) error {
	d := in.Dynamic
	switch d.Kind {
	case KindMatchType:
		if d.MatchType == nil {
			return invalid("match_type input has no group")
		}
		if d.MatchType.Allowed.IsStructural() {
			return invalid("match_type allowance %s is not a symbolic type", d.MatchType.Allowed)
		}
	case KindAutogrow:
		return validateAutogrow(d.Autogrow)
	case KindDynamicCombo:
		return validateCombo(d.Combo)
	}
	return nil
}

func validateAutogrow(spec *AutogrowSpec) error {
	if spec == nil {
		return invalid("autogrow input has no template")
	}
	if spec.Max < spec.Min || spec.Max < 1 {
		return invalid("autogrow bounds [%d,%d] are empty", spec.Min, spec.Max)
	}
	if len(spec.Template) == 0 {
		return invalid("autogrow template declares no inputs")
	}
	if len(spec.Names) > 0 && len(spec.Names) < spec.Max {
		return invalid("autogrow declares %d names for up to %d rows", len(spec.Names), spec.Max)
	}
	if len(spec.Names) == 0 && spec.Prefix == "" {
		return invalid("autogrow needs either names or a prefix")
	}
	if err := uniqueSegments("row name", spec.Names); err != nil {
		return err
	}
	if len(spec.Template) > 1 {
		columns := make([]string, len(spec.Template))
		for i, t := range spec.Template {
			columns[i] = t.Name
		}
		if err := uniqueSegments("template input", columns); err != nil {
			return err
		}
	} else if name := spec.Template[0].Name; name != "" {
		if err := uniqueSegments("template input", []string{name}); err != nil {
			return err
		}
	}
	if spec.Prefix != "" {
		if _, err := slotpath.Parse(spec.Prefix + "0"); err != nil {
			return invalid("autogrow prefix: %v", err)
		}
	}
	return nil
}

func validateCombo(spec *ComboSpec) error {
	if spec == nil || len(spec.Options) == 0 {
		return invalid("dynamic_combo declares no options")
	}
	keys := make(map[string]struct{}, len(spec.Options))
	for _, o := range spec.Options {
		if _, dup := keys[o.Key]; dup {
			return invalid("dynamic_combo option %q is declared more than once", o.Key)
		}
		keys[o.Key] = struct{}{}
		names := make([]string, len(o.Inputs))
		for i, t := range o.Inputs {
			names[i] = t.Name
		}
		if err := uniqueSegments(fmt.Sprintf("option %q input", o.Key), names); err != nil {
			return err
		}
	}
	return nil
}

// uniqueSegments checks that every name is a single, non-repeated slot name
// segment.
func uniqueSegments(what string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		p, err := slotpath.Parse(n)
		if err != nil || p.Len() != 1 {
			return invalid("%s %q must be a single name segment", what, n)
		}
		if _, dup := seen[n]; dup {
			return invalid("%s %q is declared more than once", what, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// ValidateStep validates one scenario step.
func ValidateStep(step *Step) error {
	if step == nil {
		return invalid("step cannot be nil")
	}
	if err := validate.Struct(step); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly
// format. Every result wraps ErrInvalidSpec.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required", "required_if":
			return invalid("%s: field is required", field)
		case "min", "gte":
			return invalid("%s: must be at least %s", field, param)
		case "max":
			return invalid("%s: must not exceed %s", field, param)
		case "gtefield":
			return invalid("%s: must not be less than %s", field, param)
		case "oneof":
			return invalid("%s: must be one of [%s]", field, param)
		default:
			return invalid("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
}
