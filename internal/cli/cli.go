package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/socketgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flags are shared by every command.
type flags struct {
	scenario     string
	reportFormat string
	logFormat    string
	logLevel     string
	metricsPort  int
	serve        bool
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	var (
		f      flags
		result *app.Config
	)

	build := func(command string, paths []string) error {
		cfg, err := app.NewConfig(app.Config{
			Command:      command,
			DefsPaths:    paths,
			ScenarioPath: f.scenario,
			ReportFormat: strings.ToLower(f.reportFormat),
			LogFormat:    strings.ToLower(f.logFormat),
			LogLevel:     strings.ToLower(f.logLevel),
			MetricsPort:  f.metricsPort,
			Serve:        f.serve,
		})
		if err != nil {
			return err
		}
		result = cfg
		return nil
	}

	root := &cobra.Command{
		Use:   "socketgrid [flags] DEFS_PATH...",
		Short: "Replay node-graph editing sessions against dynamic socket definitions",
		Long: `socketgrid - dynamic sockets and type resolution for node graphs.

Loads node definitions (.hcl, .yaml, .yml) from files or directories, replays
the scenario steps found alongside them and prints the sockets every node
ends up with.

Examples:
  socketgrid ./defs
  socketgrid --scenario session.hcl --report yaml ./defs
  socketgrid --metrics-port 9090 --serve ./defs
  socketgrid export ./defs > nodes.yaml`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, paths []string) error {
			if len(paths) == 0 {
				slog.Debug("No definitions path provided, printing usage and exiting.")
				return cmd.Help()
			}
			return build(app.CommandReplay, paths)
		},
	}
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.Flags().StringVarP(&f.scenario, "scenario", "s", "", "Extra file or directory with scenario steps.")
	root.Flags().StringVar(&f.reportFormat, "report", "text", "Report format. Options: 'text' or 'yaml'.")
	root.Flags().IntVar(&f.metricsPort, "metrics-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	root.Flags().BoolVar(&f.serve, "serve", false, "Keep the metrics server running after the replay until interrupted.")

	export := &cobra.Command{
		Use:   "export DEFS_PATH...",
		Short: "Write the loaded definitions as one YAML document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			return build(app.CommandExport, paths)
		},
	}
	root.AddCommand(export)

	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if result == nil {
		// Help was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", result.Command)
	return result, false, nil
}
