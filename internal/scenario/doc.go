// Package scenario replays a scripted editing session against a graph.
//
// # Why Scenario Exists
//
// The dynamic managers react to edits, so the only honest way to show what a
// set of definitions does is to perform edits. A scenario is an ordered list
// of add, connect, disconnect, move and set steps; the runner applies them
// one by one through the same graph operations an editor would use and
// reports the sockets every node ends up with.
//
// Slot references are written "<node>.<slot>", where <node> is the name
// given in the add step and <slot> may itself be dotted ("n1.images.image0").
package scenario
