// Package graph provides the slot/link model of an editor document: nodes with
// ordered input and output slots, widgets, and the typed links between them.
//
// # Why Graph Package Exists
//
// The dynamic socket managers need a small, precise contract from the editor:
// index-addressable slot lists that can be spliced, links that can be moved
// between slots, and a connection-change notification they can hook into
// without clobbering each other. This package is that contract, and nothing
// more. Rendering, layout and persistence live elsewhere.
//
// # Links Are Ids
//
// A link stores the ids of its origin and target nodes and the indices of its
// slots. Slots store link ids, never pointers. Whenever a slot list is spliced
// the graph renumbers every affected link, so Link.Resolve always finds the
// current endpoints and the structure stays free of reference cycles.
//
// # Transactions
//
// Connect, Disconnect, MoveLink and SetWidgetValue each run as one transaction:
//
//	snapshot -> mutate both endpoints -> notify handlers -> commit
//
// If any handler returns an error the snapshot is restored, so a rejected
// connection leaves the document exactly as it was. Transactions started from
// inside a handler join the outer transaction.
//
// A link dropped back onto the slot it already occupies is not a change at
// all. Replacing the link of an occupied slot is delivered as a single
// EventRelinked, and dragging a link to another input of the same node as a
// single EventMoved that names both slots. Handlers can therefore tell a move
// apart from a real disconnect without timers.
//
// # Side Tables
//
// Managers keep per-node bookkeeping (group membership, row layout) in side
// tables owned by the graph and keyed by node id. They are snapshotted with
// the rest of the document, dropped with the node, and never serialised.
//
// # Thread-Safety
//
// A Graph is not safe for concurrent use. All mutations are expected to run on
// the single goroutine that processes editor events.
package graph
