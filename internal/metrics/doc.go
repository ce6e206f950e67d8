// Package metrics exposes the engine's Prometheus counters.
//
// # Why Metrics Exists
//
// The dynamic managers only know the small Recorder interface from package
// dynamic. This package implements it on top of a private Prometheus registry
// so a process can serve its counters over HTTP, and tests can read them back
// without touching global state.
package metrics
