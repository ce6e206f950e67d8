// Package config defines the format-agnostic model of node definitions and
// editing scenarios, along with the Loader interface implemented by the
// concrete file formats.
//
// # Why Config Package Exists
//
// A node's sockets are declared, not coded: which inputs are plain, which
// belong to a match-type group, which grow as rows fill up and which are
// bound to a combo selector. The registry and the dynamic managers consume
// that declaration without caring whether it came from HCL or YAML. Keeping
// the model here, in one place, lets both loaders and every consumer agree on
// a single shape and a single validation pass.
//
// # Validation
//
// Validate is the only gate between a file and node construction. Any
// definition that fails it is reported with ErrInvalidSpec and never reaches
// the graph.
package config
