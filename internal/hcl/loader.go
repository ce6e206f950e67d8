package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths, merges node definitions
// and scenario steps into one model and validates it.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := config.NewModel()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		fileModel, err := l.decodeFile(ctx, hclFile.Body)
		if err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
		if err := model.Merge(fileModel); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "nodes", len(model.Nodes), "steps", len(model.Scenario.Steps))
	return model, nil
}

// LoadSource decodes a single in-memory HCL document. It is used by tests
// and by callers embedding definitions.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	model, err := l.decodeFile(ctx, hclFile.Body)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

// decodeFile translates the top-level blocks of one file, keeping steps in
// source order.
func (l *Loader) decodeFile(ctx context.Context, body hcl.Body) (*config.Model, error) {
	content, diags := body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %w", diags)
	}

	model := config.NewModel()
	for _, block := range content.Blocks {
		switch block.Type {
		case "node":
			var nb nodeBody
			if diags := gohcl.DecodeBody(block.Body, nil, &nb); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode node %q: %w", block.Labels[0], diags)
			}
			def, err := translateNodeDefinition(ctx, block.Labels[0], &nb)
			if err != nil {
				return nil, err
			}
			if err := model.Merge(&config.Model{Nodes: map[string]*config.NodeDefinition{def.Type: def}}); err != nil {
				return nil, err
			}
		case "add":
			var ab addBody
			if diags := gohcl.DecodeBody(block.Body, nil, &ab); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode add %q: %w", block.Labels[0], diags)
			}
			model.Scenario.Steps = append(model.Scenario.Steps, &config.Step{
				Kind:     config.StepAdd,
				Name:     block.Labels[0],
				NodeType: ab.Type,
				Expect:   ab.Expect,
			})
		default:
			var sb stepBody
			if diags := gohcl.DecodeBody(block.Body, nil, &sb); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode %s step at %s: %w", block.Type, block.DefRange, diags)
			}
			step, err := translateStep(ctx, config.StepKind(block.Type), &sb)
			if err != nil {
				return nil, fmt.Errorf("%s step at %s: %w", block.Type, block.DefRange, err)
			}
			model.Scenario.Steps = append(model.Scenario.Steps, step)
		}
	}
	return model, nil
}
