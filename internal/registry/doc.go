// Package registry holds the node definitions known to an application and
// builds graph nodes from them.
//
// # Why Registry Exists
//
// Loaders produce a format-agnostic model; the graph only knows slots and
// links. The registry sits between the two: it stores definitions by node
// type, checks at startup that every definition can actually be built, and
// turns a type name into a fully wired node, handing dynamic inputs to the
// dynamic engine.
package registry
