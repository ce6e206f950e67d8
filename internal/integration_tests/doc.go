// Package integration_tests holds end-to-end tests that load definition
// files, replay scenarios through the app and inspect the reported sockets.
// The tests live in sub-packages grouped by feature.
package integration_tests
