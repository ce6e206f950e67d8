package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/dynamic"
	"gopkg.in/yaml.v3"
)

// Report is the result of one replay.
type Report struct {
	Graph string       `yaml:"graph"`
	Steps []StepResult `yaml:"steps"`
	Nodes []NodeReport `yaml:"nodes"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int    `yaml:"index"`
	Kind     string `yaml:"kind"`
	Summary  string `yaml:"summary"`
	Outcome  string `yaml:"outcome"`
	Expected string `yaml:"expected,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// NodeReport describes the final sockets of a named node.
type NodeReport struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Inputs   []SocketReport `yaml:"inputs,omitempty"`
	Outputs  []SocketReport `yaml:"outputs,omitempty"`
	Autogrow []GroupReport  `yaml:"autogrow,omitempty"`
	Combos   []ComboReport  `yaml:"combos,omitempty"`
}

// SocketReport is one input or output.
type SocketReport struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Linked bool   `yaml:"linked,omitempty"`
	Widget any    `yaml:"widget,omitempty"`
}

// GroupReport summarises an autogrow group.
type GroupReport struct {
	Group     string `yaml:"group"`
	Rows      int    `yaml:"rows"`
	Connected int    `yaml:"connected"`
}

// ComboReport summarises a dynamic combo.
type ComboReport struct {
	Selector  string   `yaml:"selector"`
	Value     any      `yaml:"value"`
	Installed []string `yaml:"installed,omitempty"`
}

// Rejected counts the steps that did not succeed, expected or not.
func (r *Report) Rejected() int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome != OutcomeOK {
			n++
		}
	}
	return n
}

// Unexpected counts rejected steps that carried no matching Expect.
func (r *Report) Unexpected() int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome != OutcomeOK && s.Outcome != s.Expected {
			n++
		}
	}
	return n
}

// Node returns the report of a named node.
func (r *Report) Node(name string) (*NodeReport, bool) {
	for i := range r.Nodes {
		if r.Nodes[i].Name == name {
			return &r.Nodes[i], true
		}
	}
	return nil, false
}

// InputNames lists the input socket names in order.
func (n *NodeReport) InputNames() []string {
	names := make([]string, len(n.Inputs))
	for i, in := range n.Inputs {
		names[i] = in.Name
	}
	return names
}

// WriteText renders the report for humans.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "graph %s\n", r.Graph)
	for _, s := range r.Steps {
		outcome := strings.ReplaceAll(s.Outcome, "_", " ")
		if s.Expected != "" {
			outcome += " (expected)"
		}
		fmt.Fprintf(&b, "  %3d  %-40s %s\n", s.Index, s.Summary, outcome)
	}
	for _, n := range r.Nodes {
		fmt.Fprintf(&b, "node %s (%s)\n", n.Name, n.Type)
		for _, in := range n.Inputs {
			fmt.Fprintf(&b, "  in  %s %s: %s", linkMark(in.Linked), in.Name, in.Type)
			if in.Widget != nil {
				fmt.Fprintf(&b, " = %v", in.Widget)
			}
			b.WriteString("\n")
		}
		for _, out := range n.Outputs {
			fmt.Fprintf(&b, "  out %s %s: %s\n", linkMark(out.Linked), out.Name, out.Type)
		}
		for _, grp := range n.Autogrow {
			fmt.Fprintf(&b, "  autogrow %s: %d rows, %d connected\n", grp.Group, grp.Rows, grp.Connected)
		}
		for _, c := range n.Combos {
			fmt.Fprintf(&b, "  combo %s = %v: %v\n", c.Selector, c.Value, c.Installed)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func linkMark(linked bool) string {
	if linked {
		return "*"
	}
	return " "
}

// WriteYAML renders the report as a YAML document.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

func (r *Runner) describe(s *session) []NodeReport {
	var out []NodeReport
	for _, name := range s.order {
		node, ok := s.g.Node(s.names[name])
		if !ok {
			continue
		}
		nr := NodeReport{Name: name, Type: node.Type}
		for _, in := range node.Inputs {
			sr := SocketReport{Name: in.Name, Type: in.Type.String(), Linked: in.Connected()}
			if w := node.WidgetFor(in); w != nil {
				sr.Widget = w.Value
			}
			nr.Inputs = append(nr.Inputs, sr)
		}
		for _, o := range node.Outputs {
			nr.Outputs = append(nr.Outputs, SocketReport{Name: o.Name, Type: o.Type.String(), Linked: len(o.Links) > 0})
		}

		if def, ok := r.reg.Definition(node.Type); ok {
			for _, in := range def.Inputs {
				if in.Dynamic == nil {
					continue
				}
				switch in.Dynamic.Kind {
				case config.KindAutogrow:
					rows, err := dynamic.RowCount(s.g, node, in.Name)
					if err != nil {
						continue
					}
					nr.Autogrow = append(nr.Autogrow, GroupReport{Group: in.Name, Rows: rows, Connected: dynamic.ConnectedCount(node, in.Name)})
				case config.KindDynamicCombo:
					installed, err := dynamic.Installed(s.g, node, in.Name)
					if err != nil {
						continue
					}
					cr := ComboReport{Selector: in.Name, Installed: installed}
					if w := node.Widget(in.Name); w != nil {
						cr.Value = w.Value
					}
					nr.Combos = append(nr.Combos, cr)
				}
			}
		}
		out = append(out, nr)
	}
	return out
}
