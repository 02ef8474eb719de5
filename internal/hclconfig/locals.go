// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file evaluates `locals` blocks across a set of parsed files.
//
// Locals may reference each other in any order. Evaluation repeats until
// every local is known or a pass makes no progress, in which case the
// remaining locals form a cycle or reference something undefined.
package hclconfig

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/burstplan/internal/bphcl"
)

const localRoot = "local"

var localsSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "locals"}},
}

// collectLocals gathers the attributes of every locals block, rejecting
// names declared twice.
func collectLocals(bodies []hcl.Body) (map[string]*hcl.Attribute, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	out := map[string]*hcl.Attribute{}
	for _, body := range bodies {
		content, _, contentDiags := body.PartialContent(localsSchema)
		diags = append(diags, contentDiags...)
		if content == nil {
			continue
		}
		for _, block := range content.Blocks {
			attrs, attrDiags := block.Body.JustAttributes()
			diags = append(diags, attrDiags...)
			for name, attr := range attrs {
				if prev, dup := out[name]; dup {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Duplicate local value",
						Detail:   fmt.Sprintf("Local %q was already defined at %s.", name, prev.NameRange),
						Subject:  attr.NameRange.Ptr(),
					})
					continue
				}
				out[name] = attr
			}
		}
	}
	return out, diags
}

// evalLocals returns an EvalContext exposing every local as local.<name>.
func evalLocals(attrs map[string]*hcl.Attribute) (*hcl.EvalContext, error) {
	values := map[string]cty.Value{}
	funcs := bphcl.Functions()
	pending := slices.Sorted(maps.Keys(attrs))

	for len(pending) > 0 {
		evalCtx := &hcl.EvalContext{
			Variables: map[string]cty.Value{localRoot: cty.ObjectVal(values)},
			Functions: funcs,
		}
		var next []string
		for _, name := range pending {
			if !ready(attrs[name].Expr, values) {
				next = append(next, name)
				continue
			}
			val, diags := attrs[name].Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("local %q: %w", name, diags)
			}
			values[name] = val
		}
		if len(next) == len(pending) {
			return nil, fmt.Errorf("locals could not be resolved (cycle or undefined reference): %s", strings.Join(next, ", "))
		}
		pending = next
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{localRoot: cty.ObjectVal(values)},
		Functions: funcs,
	}, nil
}

// ready reports whether every local.<name> expr references is already known.
func ready(expr hcl.Expression, known map[string]cty.Value) bool {
	for _, ref := range expr.Variables() {
		if ref.RootName() != localRoot {
			continue
		}
		name, ok := bphcl.AttributeAfterRoot(ref, localRoot)
		if !ok {
			continue
		}
		if _, ok := known[name]; !ok {
			return false
		}
	}
	return true
}
