package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/graph"
	"github.com/vk/socketgrid/internal/registry"
)

// Step outcomes. The error classes match config.Step.Expect.
const (
	OutcomeOK            = "ok"
	OutcomeCannotConnect = "cannot_connect"
	OutcomeInvalid       = "invalid"
)

var (
	// ErrUnknownRef marks a step naming a node or slot that does not exist.
	ErrUnknownRef = fmt.Errorf("%w: unknown reference", config.ErrInvalidSpec)

	// ErrExpectation marks a step whose outcome differs from its Expect.
	ErrExpectation = errors.New("scenario expectation not met")
)

// Recorder receives per-step measurements.
type Recorder interface {
	RecordConnection(result string)
	RecordStep(kind, status string, duration time.Duration)
	SetGraphSize(nodes, links int)
}

type nopRecorder struct{}

func (nopRecorder) RecordConnection(string)                  {}
func (nopRecorder) RecordStep(string, string, time.Duration) {}
func (nopRecorder) SetGraphSize(int, int)                    {}

// Runner replays scenarios using the node definitions of a registry.
type Runner struct {
	reg *registry.Registry
	rec Recorder
}

// NewRunner creates a runner. A nil rec disables measurements.
func NewRunner(reg *registry.Registry, rec Recorder) *Runner {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Runner{reg: reg, rec: rec}
}

// session is the state of one replay.
type session struct {
	g     *graph.Graph
	names map[string]graph.NodeID
	order []string
}

// Run replays sc against g and reports the outcome of every step and the
// final sockets of every named node. Rejected steps are recorded and the
// replay continues; a step whose outcome contradicts its Expect stops the
// replay with ErrExpectation, and a structural invariant violation stops it
// with graph.ErrInvariant.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, sc *config.Scenario) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	s := &session{g: g, names: make(map[string]graph.NodeID)}
	report := &Report{Graph: g.ID.String()}

	var steps []*config.Step
	if sc != nil {
		steps = sc.Steps
	}
	logger.Info("Replaying scenario.", "graph", report.Graph, "steps", len(steps))

	for i, step := range steps {
		stepCtx := ctxlog.With(ctx, "step", i, "kind", string(step.Kind))
		start := time.Now()
		err := r.apply(stepCtx, s, step)
		outcome := classify(err)
		r.rec.RecordStep(string(step.Kind), outcome, time.Since(start))
		if step.Kind == config.StepConnect || step.Kind == config.StepMove {
			r.rec.RecordConnection(outcome)
		}

		res := StepResult{Index: i, Kind: string(step.Kind), Summary: summarize(step), Outcome: outcome, Expected: step.Expect}
		if err != nil {
			res.Error = err.Error()
		}
		report.Steps = append(report.Steps, res)

		switch {
		case errors.Is(err, graph.ErrInvariant):
			return report, fmt.Errorf("step %d (%s): %w", i, res.Summary, err)
		case step.Expect != "" && step.Expect != outcome:
			return report, fmt.Errorf("%w: step %d (%s) expected %s, got %s", ErrExpectation, i, res.Summary, step.Expect, outcome)
		case err != nil && step.Expect == "":
			ctxlog.FromContext(stepCtx).Warn("Scenario step rejected.", "step_summary", res.Summary, "outcome", outcome, "error", err)
		default:
			ctxlog.FromContext(stepCtx).Debug("Scenario step applied.", "step_summary", res.Summary, "outcome", outcome)
		}
	}

	report.Nodes = r.describe(s)
	r.rec.SetGraphSize(len(g.Nodes()), len(g.Links()))
	logger.Info("Scenario replayed.", "graph", report.Graph, "nodes", len(report.Nodes), "links", len(g.Links()), "rejected", report.Rejected())
	return report, nil
}

func (r *Runner) apply(ctx context.Context, s *session, step *config.Step) error {
	if err := config.ValidateStep(step); err != nil {
		return err
	}
	switch step.Kind {
	case config.StepAdd:
		if _, dup := s.names[step.Name]; dup {
			return fmt.Errorf("%w: node name %q is already taken", config.ErrInvalidSpec, step.Name)
		}
		node, err := r.reg.Build(ctx, s.g, step.NodeType)
		if err != nil {
			return err
		}
		s.names[step.Name] = node.ID
		s.order = append(s.order, step.Name)
		return nil

	case config.StepConnect:
		origin, out, err := s.output(step.From)
		if err != nil {
			return err
		}
		target, in, err := s.input(step.To)
		if err != nil {
			return err
		}
		_, err = s.g.Connect(ctx, origin.ID, out, target.ID, in)
		return err

	case config.StepDisconnect:
		target, in, err := s.input(step.At)
		if err != nil {
			return err
		}
		return s.g.Disconnect(ctx, target.ID, in)

	case config.StepMove:
		from, fromIdx, err := s.input(step.From)
		if err != nil {
			return err
		}
		link := from.Inputs[fromIdx].Link
		if link == graph.NoLink {
			return fmt.Errorf("%w: %q has no link to move", config.ErrInvalidSpec, step.From)
		}
		target, in, err := s.input(step.To)
		if err != nil {
			return err
		}
		_, err = s.g.MoveLink(ctx, link, target.ID, in)
		return err

	case config.StepSet:
		node, widget, err := s.node(step.At)
		if err != nil {
			return err
		}
		return s.g.SetWidgetValue(ctx, node.ID, widget, step.Value)

	case config.StepRemove:
		id, ok := s.names[step.At]
		if !ok {
			return fmt.Errorf("%w %q: no node with that name", ErrUnknownRef, step.At)
		}
		if err := s.g.RemoveNode(ctx, id); err != nil {
			return err
		}
		delete(s.names, step.At)
		s.order = slices.DeleteFunc(s.order, func(name string) bool { return name == step.At })
		return nil
	}
	return fmt.Errorf("%w: unsupported step kind %q", config.ErrInvalidSpec, step.Kind)
}

// node splits a reference into its node and the remaining slot name.
func (s *session) node(ref string) (*graph.Node, string, error) {
	name, slot, ok := strings.Cut(ref, ".")
	if !ok || slot == "" {
		return nil, "", fmt.Errorf("%w %q: want <node>.<slot>", ErrUnknownRef, ref)
	}
	id, ok := s.names[name]
	if !ok {
		return nil, "", fmt.Errorf("%w %q: no node named %q", ErrUnknownRef, ref, name)
	}
	n, err := s.g.MustNode(id)
	if err != nil {
		return nil, "", err
	}
	return n, slot, nil
}

func (s *session) input(ref string) (*graph.Node, int, error) {
	n, slot, err := s.node(ref)
	if err != nil {
		return nil, 0, err
	}
	idx := n.InputIndex(slot)
	if idx < 0 {
		return nil, 0, fmt.Errorf("%w %q: inputs are %v", ErrUnknownRef, ref, n.InputNames())
	}
	return n, idx, nil
}

func (s *session) output(ref string) (*graph.Node, int, error) {
	n, slot, err := s.node(ref)
	if err != nil {
		return nil, 0, err
	}
	idx := n.OutputIndex(slot)
	if idx < 0 {
		return nil, 0, fmt.Errorf("%w %q: no such output", ErrUnknownRef, ref)
	}
	return n, idx, nil
}

func classify(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, graph.ErrIncompatibleType):
		return OutcomeCannotConnect
	default:
		return OutcomeInvalid
	}
}

func summarize(step *config.Step) string {
	switch step.Kind {
	case config.StepAdd:
		return fmt.Sprintf("add %s %s", step.Name, step.NodeType)
	case config.StepConnect:
		return fmt.Sprintf("connect %s -> %s", step.From, step.To)
	case config.StepDisconnect:
		return fmt.Sprintf("disconnect %s", step.At)
	case config.StepMove:
		return fmt.Sprintf("move %s -> %s", step.From, step.To)
	case config.StepSet:
		return fmt.Sprintf("set %s = %v", step.At, step.Value)
	case config.StepRemove:
		return fmt.Sprintf("remove %s", step.At)
	}
	return string(step.Kind)
}
