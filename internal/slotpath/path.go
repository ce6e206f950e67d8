// internal/slotpath/path.go
package slotpath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single segment such as `image0` or `on_true`.
var segmentRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// isValidSegmentName rejects names that are technically matched but unusable.
func isValidSegmentName(name string) bool {
	return name != "-"
}

// Parse splits a dot-notation name into its segments.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("slot name cannot be empty")
	}

	var p Path
	for _, segment := range strings.Split(raw, ".") {
		if segment == "" {
			return Path{}, fmt.Errorf("slot name %q contains an empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) || !isValidSegmentName(segment) {
			return Path{}, fmt.Errorf("invalid slot name segment %q in %q", segment, raw)
		}
		p.Segments = append(p.Segments, segment)
	}
	return p, nil
}

// String renders the canonical dot-notation form.
func (p Path) String() string {
	return strings.Join(p.Segments, ".")
}

// Join builds a dot-notation name from parts, skipping empty ones.
func Join(parts ...string) string {
	return New(parts...).String()
}

// InGroup reports whether name lives under the given group prefix.
func InGroup(name, group string) bool {
	return group != "" && strings.HasPrefix(name, group+".")
}
