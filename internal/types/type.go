package types

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// WildcardName is the symbolic spelling of the wildcard type.
const WildcardName = "*"

// Type is a socket type: the wildcard, a union of symbolic names, or a
// structural cty type. The zero value is the wildcard.
type Type struct {
	names []string
	shape cty.Type
}

// Wildcard accepts any other type.
var Wildcard = Type{}

// Parse builds a Type from its textual form. Empty strings and "*" are the
// wildcard; otherwise the input is split on commas, trimmed and de-duplicated
// case-insensitively.
func Parse(expr string) Type {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == WildcardName {
		return Wildcard
	}
	var names []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == WildcardName {
			return Wildcard
		}
		if _, dup := seen[fold(part)]; dup {
			continue
		}
		seen[fold(part)] = struct{}{}
		names = append(names, part)
	}
	return Type{names: names}
}

// Of builds a union Type from a list of names.
func Of(names ...string) Type {
	return Parse(strings.Join(names, ","))
}

// Structural wraps a cty type. cty.DynamicPseudoType is treated as the wildcard.
func Structural(t cty.Type) Type {
	if t == cty.NilType || t.Equals(cty.DynamicPseudoType) {
		return Wildcard
	}
	return Type{shape: t}
}

// IsWildcard reports whether t accepts anything.
func (t Type) IsWildcard() bool {
	return len(t.names) == 0 && t.shape == cty.NilType
}

// IsStructural reports whether t is an object or collection type rather than a
// flat symbolic type.
func (t Type) IsStructural() bool {
	return t.shape != cty.NilType
}

// Shape returns the structural cty type, or cty.NilType for symbolic types.
func (t Type) Shape() cty.Type {
	return t.shape
}

// Names returns a copy of the union members in declaration order.
func (t Type) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// String renders the type the way it is written in definitions.
func (t Type) String() string {
	switch {
	case t.IsStructural():
		return t.shape.FriendlyName()
	case t.IsWildcard():
		return WildcardName
	default:
		return strings.Join(t.names, ",")
	}
}

// Equal reports set equality. Member order and case do not matter.
func (t Type) Equal(other Type) bool {
	if t.IsStructural() || other.IsStructural() {
		return t.IsStructural() && other.IsStructural() && t.shape.Equals(other.shape)
	}
	if len(t.names) != len(other.names) {
		return false
	}
	set := make(map[string]struct{}, len(t.names))
	for _, n := range t.names {
		set[fold(n)] = struct{}{}
	}
	for _, n := range other.names {
		if _, ok := set[fold(n)]; !ok {
			return false
		}
	}
	return true
}

// Has reports whether name is a member of t. The wildcard has every member.
func (t Type) Has(name string) bool {
	if t.IsWildcard() {
		return true
	}
	for _, n := range t.names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
