// Package types implements the socket type algebra used by the editor.
//
// # Why a Type Algebra
//
// A socket declares what it accepts either as a single symbolic name
// ("IMAGE"), a comma-separated union of names ("IMAGE,MASK"), or the wildcard
// "*". Connecting two sockets and resolving groups of sockets that must agree
// on a type both reduce to set operations over those names:
//
//   - IsValidConnection: do the two name sets overlap?
//   - Combine: what is left after intersecting every non-wildcard operand?
//   - Intersection: the membership count that Combine is built on.
//
// A socket may also carry a structural type (an object or collection type
// expressed with go-cty). Structural types can be checked for connection
// validity but cannot be combined; Combine reports ErrNotCombinable for them.
//
// All functions in this package are pure and safe for concurrent use.
package types
