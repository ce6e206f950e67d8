package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// exprToGo evaluates a literal expression into a plain Go value. An omitted
// attribute or a null literal yields nil.
func exprToGo(ctx context.Context, expr hcl.Expression, attrName string) (any, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid value for %s: %w", attrName, diags)
	}
	return ctyToGo(val)
}

// ctyToGo converts a known cty value into string, bool, int, float64 or a
// []any of those. Whole numbers become int.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be known at load time")
	}

	ty := val.Type()
	switch {
	case ty.Equals(cty.String):
		var s string
		err := gocty.FromCtyValue(val, &s)
		return s, err
	case ty.Equals(cty.Bool):
		var b bool
		err := gocty.FromCtyValue(val, &b)
		return b, err
	case ty.Equals(cty.Number):
		if val.AsBigFloat().IsInt() {
			var i int
			if err := gocty.FromCtyValue(val, &i); err == nil {
				return i, nil
			}
		}
		var f float64
		err := gocty.FromCtyValue(val, &f)
		return f, err
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			v, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
	}
}
