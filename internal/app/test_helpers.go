package app

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/hcl"
	"github.com/vk/socketgrid/internal/testutil"
	"github.com/vk/socketgrid/internal/yamldef"
)

// SetupAppTest creates a new app instance for system testing. It returns the
// app, its report output and its captured logs.
func SetupAppTest(t *testing.T, cfg *Config, loader config.Loader) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(out, logs, cfg, loader)

	t.Cleanup(func() {
		if testing.Verbose() && t.Failed() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return testApp, out, logs
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *App
}

// RunIntegrationTest writes files under a temporary root, builds an app that
// reads HCL and YAML from that root and runs it. Startup panics are returned
// as Err, the way the entrypoint reports them.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg Config) *HarnessResult {
	t.Helper()

	root := testutil.WriteFiles(t, files)
	if len(cfg.DefsPaths) == 0 {
		cfg.DefsPaths = []string{root}
	}
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	if err != nil {
		return &HarnessResult{Err: err}
	}

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	result := &HarnessResult{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked: %v", r)
			}
		}()
		loader := config.NewMultiLoader(hcl.NewLoader(), yamldef.NewLoader())
		result.App = NewApp(out, logs, appConfig, loader)
	}()
	if result.Err == nil {
		result.Err = result.App.Run(context.Background())
	}

	result.Output = out.String()
	result.LogOutput = logs.String()
	t.Cleanup(func() {
		if testing.Verbose() && t.Failed() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	})
	return result
}
