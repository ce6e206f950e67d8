package yamldef

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// MaxFileSize is the largest definition file the loader accepts.
const MaxFileSize = 1024 * 1024

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .yaml and .yml file found under paths, merges them into
// one model and validates it.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}

	model := config.NewModel()
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", file, err)
		}
		if info.Size() > MaxFileSize {
			return nil, fmt.Errorf("YAML file %s is too large: %d bytes (max %d)", file, info.Size(), MaxFileSize)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
		}
		fileModel, err := decode(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("in YAML file %s: %w", file, err)
		}
		if err := model.Merge(fileModel); err != nil {
			return nil, fmt.Errorf("in YAML file %s: %w", file, err)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("YAML loading complete.", "files", len(files), "nodes", len(model.Nodes), "steps", len(model.Scenario.Steps))
	return model, nil
}

// LoadSource decodes a single in-memory YAML document.
func (l *Loader) LoadSource(ctx context.Context, src []byte) (*config.Model, error) {
	model, err := decode(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

// decode strictly unmarshals one document. Unknown keys are errors.
func decode(ctx context.Context, data []byte) (*config.Model, error) {
	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return translate(ctx, &root)
}
