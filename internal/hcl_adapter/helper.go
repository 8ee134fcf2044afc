package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined reports whether an optional attribute was present in the
// source. The decoder fills omitted optional expressions with a zero-width
// placeholder, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// evalInt evaluates expr to a Go int.
func evalInt(expr hcl.Expression, ectx *hcl.EvalContext, what string) (int, error) {
	v, diags := expr.Value(ectx)
	if diags.HasErrors() {
		return 0, fmt.Errorf("invalid %s: %w", what, diags)
	}
	var out int
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return 0, fmt.Errorf("%s at %s must be a whole number: %w", what, expr.Range(), err)
	}
	return out, nil
}

// evalUint evaluates expr to a non-negative integer literal value.
func evalUint(expr hcl.Expression, ectx *hcl.EvalContext, what string) (uint64, error) {
	v, diags := expr.Value(ectx)
	if diags.HasErrors() {
		return 0, fmt.Errorf("invalid %s: %w", what, diags)
	}
	var out uint64
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return 0, fmt.Errorf("%s at %s must be a non-negative whole number: %w", what, expr.Range(), err)
	}
	return out, nil
}

// evalObject evaluates an optional object expression, e.g. `params = {...}`,
// into a map. An omitted expression yields an empty map.
func evalObject(expr hcl.Expression, ectx *hcl.EvalContext, what string) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value)
	if !isExprDefined(expr) {
		return out, nil
	}
	v, diags := expr.Value(ectx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid %s: %w", what, diags)
	}
	if v.IsNull() {
		return out, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("%s at %s must be an object, got %s", what, expr.Range(), v.Type().FriendlyName())
	}
	for k, val := range v.AsValueMap() {
		out[k] = val
	}
	return out, nil
}

// evalSlice evaluates a `[hi, lo]` pair.
func evalSlice(expr hcl.Expression, ectx *hcl.EvalContext, what string) (*model.Slice, error) {
	if !isExprDefined(expr) {
		return nil, nil
	}
	v, diags := expr.Value(ectx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid %s: %w", what, diags)
	}
	if v.IsNull() || !v.CanIterateElements() || v.LengthInt() != 2 {
		return nil, fmt.Errorf("%s at %s must be a [hi, lo] pair", what, expr.Range())
	}
	var pair []int
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		var n int
		if err := gocty.FromCtyValue(ev, &n); err != nil {
			return nil, fmt.Errorf("%s at %s must be a [hi, lo] pair: %w", what, expr.Range(), err)
		}
		pair = append(pair, n)
	}
	if pair[0] < pair[1] || pair[1] < 0 {
		return nil, fmt.Errorf("%s at %s has an invalid range [%d, %d]", what, expr.Range(), pair[0], pair[1])
	}
	return &model.Slice{Hi: pair[0], Lo: pair[1]}, nil
}

// bodySource returns the source text of a block body when it is available.
func bodySource(body hcl.Body, files map[string]*hcl.File) string {
	sb, ok := body.(*hclsyntax.Body)
	if !ok {
		return ""
	}
	f, ok := files[sb.SrcRange.Filename]
	if !ok || sb.SrcRange.End.Byte > len(f.Bytes) {
		return ""
	}
	return string(f.Bytes[sb.SrcRange.Start.Byte:sb.SrcRange.End.Byte])
}
