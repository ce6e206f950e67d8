package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/socketgrid/internal/app"
	"github.com/vk/socketgrid/internal/scenario"
	"gopkg.in/yaml.v3"
)

// Replay runs files through the app with a YAML report and decodes it.
func Replay(t *testing.T, files map[string]string) (*scenario.Report, *app.HarnessResult) {
	t.Helper()
	result := app.RunIntegrationTest(t, files, app.Config{ReportFormat: "yaml"})
	report := &scenario.Report{}
	if result.Output != "" {
		require.NoError(t, yaml.Unmarshal([]byte(result.Output), report), "report must be valid YAML")
	}
	return report, result
}

// Node returns a named node from the report or fails the test.
func Node(t *testing.T, report *scenario.Report, name string) *scenario.NodeReport {
	t.Helper()
	n, ok := report.Node(name)
	require.True(t, ok, "node %q missing from report", name)
	return n
}

// Outcomes lists the outcome of every step in order.
func Outcomes(report *scenario.Report) []string {
	out := make([]string, len(report.Steps))
	for i, s := range report.Steps {
		out[i] = s.Outcome
	}
	return out
}
