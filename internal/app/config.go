package app

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Commands understood by App.Run.
const (
	CommandReplay = "replay"
	CommandExport = "export"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command      string   `validate:"oneof=replay export"`
	DefsPaths    []string `validate:"required,min=1,dive,required"` // .hcl, .yaml and .yml files
	ScenarioPath string   // optional extra file or directory with scenario steps

	ReportFormat string `validate:"oneof=text yaml"`
	LogFormat    string `validate:"oneof=text json"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	MetricsPort  int    `validate:"gte=0,lte=65535"`
	// Serve keeps the health and metrics server up after the replay until
	// the run context is cancelled.
	Serve bool
}

var validate = validator.New()

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		cfg.Command = CommandReplay
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = "text"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if len(cfg.DefsPaths) == 0 {
		return nil, errors.New("at least one definitions path is required")
	}
	if cfg.Serve && cfg.MetricsPort == 0 {
		return nil, errors.New("serve requires a metrics port")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return nil, fmt.Errorf("invalid %s: %q fails '%s'", e.Field(), fmt.Sprint(e.Value()), e.Tag())
		}
		return nil, err
	}
	return &cfg, nil
}

// paths lists everything the loader should read.
func (c *Config) paths() []string {
	paths := append([]string(nil), c.DefsPaths...)
	if c.ScenarioPath != "" {
		paths = append(paths, c.ScenarioPath)
	}
	return paths
}
