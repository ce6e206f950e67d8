// Package hcl provides the HCL implementation of config.Loader. It parses
// `node` definition blocks and scenario steps from .hcl files, translates
// type expressions into socket types and converts literal values into plain
// Go values.
//
// # Type Expressions
//
// A quoted string is a symbolic socket type: "IMAGE", "IMAGE,MASK" or the
// wildcard "*". The bare keywords string, number and bool and the
// constructors object(), list(), map() and set() build structural types.
// The keyword any is the wildcard.
//
// # Scenario Blocks
//
// Scenario steps run in file order, so the loader walks the body content in
// source order instead of decoding each block type into its own slice.
package hcl
