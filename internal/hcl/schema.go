package hcl

import "github.com/hashicorp/hcl/v2"

// fileSchema lists every top-level block a file may contain. Blocks are
// returned by Content in source order.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "node", LabelNames: []string{"type"}},
		{Type: "add", LabelNames: []string{"name"}},
		{Type: "connect"},
		{Type: "disconnect"},
		{Type: "move"},
		{Type: "set"},
		{Type: "remove"},
	},
}

// nodeBody is the content of a `node "<type>"` block.
type nodeBody struct {
	Description string         `hcl:"description,optional"`
	Inputs      []*inputBlock  `hcl:"input,block"`
	Outputs     []*outputBlock `hcl:"output,block"`
}

type inputBlock struct {
	Name      string          `hcl:"name,label"`
	Type      hcl.Expression  `hcl:"type,optional"`
	Optional  bool            `hcl:"optional,optional"`
	Widget    hcl.Expression  `hcl:"widget,optional"`
	MatchType *matchTypeBlock `hcl:"match_type,block"`
	Autogrow  *autogrowBlock  `hcl:"autogrow,block"`
	Combo     *comboBlock     `hcl:"dynamic_combo,block"`
	// Dynamic names a dynamic kind without a dedicated block. It exists so
	// definitions written for newer managers still load.
	Dynamic string `hcl:"dynamic,optional"`
}

type outputBlock struct {
	Name      string         `hcl:"name,label"`
	Type      hcl.Expression `hcl:"type,optional"`
	MatchType string         `hcl:"match_type,optional"`
}

type matchTypeBlock struct {
	Group   string         `hcl:"group"`
	Allowed hcl.Expression `hcl:"allowed,optional"`
}

type autogrowBlock struct {
	Min    int              `hcl:"min,optional"`
	Max    int              `hcl:"max"`
	Prefix string           `hcl:"prefix,optional"`
	Names  []string         `hcl:"names,optional"`
	Inputs []*templateBlock `hcl:"input,block"`
}

type comboBlock struct {
	Options []*optionBlock `hcl:"option,block"`
}

type optionBlock struct {
	Key    string           `hcl:"key,label"`
	Inputs []*templateBlock `hcl:"input,block"`
}

type templateBlock struct {
	Name     string         `hcl:"name,label"`
	Type     hcl.Expression `hcl:"type,optional"`
	Optional bool           `hcl:"optional,optional"`
	Widget   hcl.Expression `hcl:"widget,optional"`
}

// addBody is the content of an `add "<name>"` step.
type addBody struct {
	Type   string `hcl:"type"`
	Expect string `hcl:"expect,optional"`
}

// stepBody is the content of every other step block.
type stepBody struct {
	From   string         `hcl:"from,optional"`
	To     string         `hcl:"to,optional"`
	At     string         `hcl:"at,optional"`
	Value  hcl.Expression `hcl:"value,optional"`
	Expect string         `hcl:"expect,optional"`
}
