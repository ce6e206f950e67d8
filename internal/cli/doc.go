// Package cli turns command-line arguments into an app.Config. It owns the
// command tree, the usage text and the exit codes of the socketgrid binary.
package cli
