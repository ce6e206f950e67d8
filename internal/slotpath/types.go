// internal/slotpath/types.go
package slotpath

// Path is a parsed dot-notation name.
type Path struct {
	Segments []string
}

// New builds a Path from already-validated segments.
func New(segments ...string) Path {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return Path{Segments: out}
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.Segments)
}

// Head returns the first segment, or "" for an empty path.
func (p Path) Head() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0]
}

// Tail returns the path without its first segment.
func (p Path) Tail() Path {
	if len(p.Segments) <= 1 {
		return Path{}
	}
	return Path{Segments: append([]string(nil), p.Segments[1:]...)}
}
