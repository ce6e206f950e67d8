// internal/slotpath/doc.go

/*
Package slotpath provides a structured representation of dot-notation slot
names, e.g. `images.image0` for the first row of an autogrow group or
`resize_type.multiplier` for a socket installed by a dynamic combo.

The first segment names the owning group or selector; the remaining segments
name the slot within it. Scenario files use the same notation prefixed with the
node alias, e.g. `n1.images.image0`.

This package centralizes all formatting and parsing of these names so the
managers never build them by string concatenation.
*/
package slotpath
