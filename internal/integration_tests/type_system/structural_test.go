package type_system_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	it "github.com/vk/socketgrid/internal/integration_tests"
)

func TestStructuralTypes_ConnectOnlyToEqualShapes(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	nodesHCL := `
node "Camera" {
  output "pose" { type = object({ x = number, y = number }) }
  output "tags" { type = list(string) }
}

node "Planner" {
  input "pose" { type = object({ x = number, y = number }) }
  input "labels" { type = set(string) }
}
`
	session := `
add "cam" { type = "Camera" }
add "plan" { type = "Planner" }
connect {
  from = "cam.pose"
  to   = "plan.pose"
}
connect {
  from   = "cam.tags"
  to     = "plan.labels"
  expect = "cannot_connect"
}
`
	// --- Act ---
	report, result := it.Replay(t, map[string]string{"nodes.hcl": nodesHCL, "session.hcl": session})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, []string{"ok", "ok", "ok", "cannot_connect"}, it.Outcomes(report))
	plan := it.Node(t, report, "plan")
	require.True(t, plan.Inputs[0].Linked)
	require.False(t, plan.Inputs[1].Linked)
}

func TestStructuralTypes_CannotJoinMatchGroup(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	nodesHCL := `
node "Bad" {
  input "a" {
    match_type {
      group   = "T"
      allowed = "INT"
    }
  }
  input "b" {
    match_type {
      group   = "T"
      allowed = "FLOAT"
    }
  }
}
`
	// --- Act ---
	_, result := it.Replay(t, map[string]string{"nodes.hcl": nodesHCL})

	// --- Assert ---
	require.Error(t, result.Err, "disagreeing allowances must fail at startup")
	require.Contains(t, result.Err.Error(), "application startup panicked")
	require.Contains(t, result.Err.Error(), "invalid spec")
}
