// Package dynamic implements the managers that reshape a node's sockets
// after it has been built: match-type groups, autogrow groups and dynamic
// combo bindings.
//
// # Why Dynamic Package Exists
//
// Some nodes cannot declare a fixed list of sockets. A switch node's inputs
// must all agree on one type, a batch node grows a new input every time its
// last one is connected, and a resize node shows different inputs depending
// on the mode picked in a combo. These behaviours share one pattern: a
// declarative spec installs a manager at build time, and the manager reacts
// to connection or widget events by mutating the node through the graph's
// structural primitives.
//
// # Core Concepts
//
//   - Engine: Entry point. Apply dispatches an input definition to the
//     manager for its dynamic kind.
//   - Match-type group: slots constrained to one common type, recomputed on
//     every connection change of a member.
//   - Autogrow group: rows of inputs that grow when the last row fills and
//     compact when a row empties, never leaving the [min,max] bounds.
//   - Combo binding: the set of sockets installed for the selector's current
//     value, torn down and rebuilt on every change.
//
// # State
//
// Managers never keep state of their own. Group tables live in the graph's
// per-node side tables, so they are snapshotted with the graph, restored when
// a transaction is rejected, and discarded with the node.
package dynamic
