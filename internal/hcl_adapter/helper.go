package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder fills omitted optional attributes with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// evalDefined evaluates expr. ok is false when the attribute was omitted or
// is null.
func evalDefined(ctx context.Context, expr hcl.Expression, attrName string) (val cty.Value, ok bool, err error) {
	if !isExprDefined(ctx, expr, attrName) {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, false, fmt.Errorf("invalid %s: %w", attrName, diags)
	}
	if val.IsNull() {
		return cty.NilVal, false, nil
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, false, fmt.Errorf("%s must be a literal value", attrName)
	}
	return val, true, nil
}

// decodeTags accepts a single number or a list of numbers.
func decodeTags(ctx context.Context, expr hcl.Expression, attrName string) ([]int, error) {
	val, ok, err := evalDefined(ctx, expr, attrName)
	if err != nil || !ok {
		return nil, err
	}

	if val.Type() == cty.Number {
		var tag int
		if err := gocty.FromCtyValue(val, &tag); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", node.ErrInvalidConfig, attrName, err)
		}
		return []int{tag}, nil
	}

	list, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a tag or a list of tags, got %s", node.ErrInvalidConfig, attrName, val.Type().FriendlyName())
	}
	var tags []int
	if err := gocty.FromCtyValue(list, &tags); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", node.ErrInvalidConfig, attrName, err)
	}
	return tags, nil
}

// decodeStatics accepts an object whose values are numbers or lists of numbers.
func decodeStatics(ctx context.Context, expr hcl.Expression, attrName string) (map[string]node.Static, error) {
	val, ok, err := evalDefined(ctx, expr, attrName)
	if err != nil || !ok {
		return nil, err
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("%w: %s must be an object, got %s", node.ErrInvalidConfig, attrName, ty.FriendlyName())
	}

	statics := make(map[string]node.Static)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		key := k.AsString()

		if v.Type() == cty.Number {
			var f float64
			if err := gocty.FromCtyValue(v, &f); err != nil {
				return nil, fmt.Errorf("%w: %s[%q]: %v", node.ErrInvalidConfig, attrName, key, err)
			}
			statics[key] = node.Number(f)
			continue
		}

		list, err := convert.Convert(v, cty.List(cty.Number))
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%q] must be a number or a list of numbers", node.ErrInvalidConfig, attrName, key)
		}
		var fs []float64
		if err := gocty.FromCtyValue(list, &fs); err != nil {
			return nil, fmt.Errorf("%w: %s[%q]: %v", node.ErrInvalidConfig, attrName, key, err)
		}
		statics[key] = node.Numbers(fs...)
	}
	return statics, nil
}

// decodeOptionalNumber returns nil when expr was omitted.
func decodeOptionalNumber(ctx context.Context, expr hcl.Expression, attrName string) (*float64, error) {
	val, ok, err := evalDefined(ctx, expr, attrName)
	if err != nil || !ok {
		return nil, err
	}
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", attrName, err)
	}
	return &f, nil
}
