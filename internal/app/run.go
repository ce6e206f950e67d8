package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/scenario"
	"github.com/vk/socketgrid/internal/yamldef"
)

// ErrRejectedSteps is returned by Run when a replay finished but some steps
// were rejected without an expectation saying so.
var ErrRejectedSteps = errors.New("scenario had unexpected rejections")

// Run executes the configured command.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	if a.config.Command == CommandExport {
		return a.export()
	}

	if a.config.MetricsPort > 0 {
		if err := a.startServer(a.config.MetricsPort); err != nil {
			return err
		}
		defer func() {
			if cerr := a.closeServer(ctx); err == nil {
				err = cerr
			}
		}()
	}

	if len(a.model.Scenario.Steps) == 0 {
		a.logger.Warn("No scenario steps found, nothing to replay.")
	}
	g := graph.New()
	report, err := scenario.NewRunner(a.registry, a.metrics).Run(ctx, g, a.model.Scenario)
	if report != nil {
		if werr := a.writeReport(report); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return fmt.Errorf("scenario failed: %w", err)
	}

	if a.config.Serve {
		a.logger.Info("Replay finished, serving metrics until interrupted.")
		<-ctx.Done()
	}

	if n := report.Unexpected(); n > 0 {
		return fmt.Errorf("%w: %d step(s)", ErrRejectedSteps, n)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) writeReport(report *scenario.Report) error {
	if a.config.ReportFormat == "yaml" {
		return report.WriteYAML(a.outW)
	}
	return report.WriteText(a.outW)
}

// export writes every registered definition as one YAML document.
func (a *App) export() error {
	data, err := yamldef.Marshal(a.model)
	if err != nil {
		return fmt.Errorf("failed to export definitions: %w", err)
	}
	if _, err := a.outW.Write(data); err != nil {
		return fmt.Errorf("failed to write definitions: %w", err)
	}
	a.logger.Info("Definitions exported.", "types", len(a.model.Nodes))
	return nil
}
