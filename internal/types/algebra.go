package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompatible is returned by Combine when the operands share no member.
	ErrIncompatible = errors.New("types are incompatible")

	// ErrNotCombinable is returned by Combine when an operand is structural.
	ErrNotCombinable = errors.New("structural types cannot be combined")
)

// IsValidConnection reports whether a socket of type a may be linked to a
// socket of type b. Symbolic names compare case-insensitively.
func IsValidConnection(a, b Type) bool {
	if a.IsWildcard() || b.IsWildcard() {
		return true
	}
	if a.IsStructural() || b.IsStructural() {
		return a.IsStructural() && b.IsStructural() && a.shape.Equals(b.shape)
	}
	for _, x := range a.names {
		for _, y := range b.names {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

// Combine intersects every non-wildcard operand. The result is the wildcard
// when no operand constrains anything, and keeps the member order of the first
// constraining operand.
func Combine(ts ...Type) (Type, error) {
	var sets [][]string
	for _, t := range ts {
		if t.IsStructural() {
			return Wildcard, fmt.Errorf("%w: %s", ErrNotCombinable, t)
		}
		if t.IsWildcard() {
			continue
		}
		sets = append(sets, t.names)
	}
	if len(sets) == 0 {
		return Wildcard, nil
	}

	common := Intersection(sets...)
	if len(common) == 0 {
		return Wildcard, fmt.Errorf("%w: %s", ErrIncompatible, describe(ts))
	}
	return Type{names: common}, nil
}

// Intersection returns the names present in every set, in the order and
// spelling they have in the first set. Names match case-insensitively, like
// IsValidConnection. Duplicates inside one set are counted once.
func Intersection(sets ...[]string) []string {
	if len(sets) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, set := range sets {
		seen := make(map[string]struct{}, len(set))
		for _, name := range set {
			key := fold(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			counts[key]++
		}
	}

	var out []string
	emitted := make(map[string]struct{})
	for _, name := range sets[0] {
		key := fold(name)
		if _, dup := emitted[key]; dup {
			continue
		}
		if counts[key] == len(sets) {
			out = append(out, name)
			emitted[key] = struct{}{}
		}
	}
	return out
}

func fold(name string) string { return strings.ToLower(name) }

func describe(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprintf("%q", t.String())
	}
	return strings.Join(parts, " & ")
}
