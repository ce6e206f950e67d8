// Package app contains the core application logic. It wires the loaders,
// the node registry, the dynamic engine and the metrics registry together
// and runs one command, decoupled from any specific entrypoint like a CLI.
package app
