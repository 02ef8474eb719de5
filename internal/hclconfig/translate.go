// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file translates decoded schema structs into the format-agnostic
// config model.
package hclconfig

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/specialistvlad/burstplan/internal/bphcl"
	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/internal/schema"
)

func translatePlan(evalCtx *hcl.EvalContext, p *schema.Plan, file string) (*config.PlanDefinition, error) {
	def := &config.PlanDefinition{
		ProjectKey:  p.ProjectKey,
		ProjectName: p.ProjectName,
		Key:         p.Key,
		Name:        p.Name,
		Description: p.Description,
		Policy:      p.Policy,
		Source:      file,
	}
	where := fmt.Sprintf("plan %s-%s", p.ProjectKey, p.Key)

	var err error
	if def.Params, err = evalParams(evalCtx, p.Params); err != nil {
		return nil, fmt.Errorf("%s: params: %w", where, err)
	}
	if def.Variables, err = evalStrings(evalCtx, p.Variables); err != nil {
		return nil, fmt.Errorf("%s: variables: %w", where, err)
	}
	if def.PluginConfiguration, err = evalPluginConfiguration(evalCtx, p.PluginConfiguration); err != nil {
		return nil, fmt.Errorf("%s: plugin_configuration: %w", where, err)
	}

	for _, s := range p.Stages {
		stage := &config.StageDefinition{
			Name:        s.Name,
			Description: s.Description,
			Manual:      s.Manual,
			DependsOn:   s.DependsOn,
		}
		for _, j := range s.Jobs {
			job, err := translateJob(evalCtx, j)
			if err != nil {
				return nil, fmt.Errorf("%s: job %s: %w", where, job.Address(s.Name), err)
			}
			stage.Jobs = append(stage.Jobs, job)
		}
		def.Stages = append(def.Stages, stage)
	}
	return def, nil
}

// translateJob always returns a job carrying at least its ID so callers
// can name it in errors.
func translateJob(evalCtx *hcl.EvalContext, j *schema.Job) (*config.JobDefinition, error) {
	job := &config.JobDefinition{
		ID:                    j.ID,
		Role:                  j.Role,
		Key:                   j.Key,
		Name:                  j.Name,
		Description:           j.Description,
		Fragments:             j.Fragments,
		FinalTasks:            j.FinalTasks,
		Chunks:                j.Chunks,
		CleanWorkingDirectory: true,
	}
	if j.CleanWorkingDirectory != nil {
		job.CleanWorkingDirectory = *j.CleanWorkingDirectory
	}

	for _, raw := range j.Backends {
		b, err := params.ParseBackend(raw)
		if err != nil {
			return job, err
		}
		job.Backends = append(job.Backends, b)
	}

	var err error
	if job.Params, err = evalParams(evalCtx, j.Params); err != nil {
		return job, fmt.Errorf("params: %w", err)
	}
	if job.PluginConfiguration, err = evalPluginConfiguration(evalCtx, j.PluginConfiguration); err != nil {
		return job, fmt.Errorf("plugin_configuration: %w", err)
	}

	for _, a := range j.Artifacts {
		job.Artifacts = append(job.Artifacts, plan.Artifact{Name: a.Name, CopyPattern: a.CopyPattern, Shared: a.Shared})
	}
	for _, r := range j.Requirements {
		req, err := translateRequirement(r)
		if err != nil {
			return job, err
		}
		job.Requirements = append(job.Requirements, req)
	}
	return job, nil
}

func translateRequirement(r *schema.Requirement) (plan.Requirement, error) {
	match := plan.MatchEquals
	if r.MatchType != "" {
		var err error
		if match, err = plan.ParseMatchType(r.MatchType); err != nil {
			return plan.Requirement{}, fmt.Errorf("requirement %q: %w", r.Capability, err)
		}
	}
	return plan.Requirement{Capability: r.Capability, MatchType: match, MatchValue: r.MatchValue}, nil
}

func translateFragment(f *schema.Fragment, file string) (*config.FragmentDefinition, error) {
	def := &config.FragmentDefinition{
		Name:        f.Name,
		Interpreter: f.Interpreter,
		Requires:    f.Requires,
		Source:      file,
	}
	if bphcl.IsExprDefined(f.Description) {
		def.Description = f.Description
	}
	if bphcl.IsExprDefined(f.Body) {
		def.Body = f.Body
	}
	if bphcl.IsExprDefined(f.Environment) {
		pairs, diags := hcl.ExprMap(f.Environment)
		if diags.HasErrors() {
			return nil, fmt.Errorf("fragment %q: environment must be an object: %w", f.Name, diags)
		}
		def.Environment = make(map[string]hcl.Expression, len(pairs))
		for _, pair := range pairs {
			key := hcl.ExprAsKeyword(pair.Key)
			if key == "" {
				kv, diags := pair.Key.Value(nil)
				if diags.HasErrors() || kv.IsNull() || kv.Type() != cty.String {
					return nil, fmt.Errorf("fragment %q: environment keys must be literal names", f.Name)
				}
				key = kv.AsString()
			}
			def.Environment[key] = pair.Value
		}
	}
	return def, nil
}

// evalParams evaluates a params block into a Set.
func evalParams(evalCtx *hcl.EvalContext, block *schema.Attributes) (params.Set, error) {
	values, err := evalAttributes(evalCtx, block)
	if err != nil || len(values) == 0 {
		return params.Set{}, err
	}
	out := make(map[string]params.Value, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		v, err := params.FromCty(name, values[name])
		if err != nil {
			return params.Set{}, err
		}
		out[name] = v
	}
	return params.NewSet(out), nil
}

// evalStrings evaluates a variables block into plain strings.
func evalStrings(evalCtx *hcl.EvalContext, block *schema.Attributes) (map[string]string, error) {
	values, err := evalAttributes(evalCtx, block)
	if err != nil || len(values) == 0 {
		return nil, err
	}
	out := make(map[string]string, len(values))
	for name, val := range values {
		str, err := convert.Convert(val, cty.String)
		if err != nil || str.IsNull() {
			return nil, fmt.Errorf("%s: expected a string, got %s", name, val.Type().FriendlyName())
		}
		out[name] = str.AsString()
	}
	return out, nil
}

func evalAttributes(evalCtx *hcl.EvalContext, block *schema.Attributes) (map[string]cty.Value, error) {
	if block == nil || block.Body == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		out[name] = val
	}
	return out, nil
}

func evalPluginConfiguration(evalCtx *hcl.EvalContext, expr hcl.Expression) (plan.PluginConfiguration, error) {
	if !bphcl.IsExprDefined(expr) {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	native, err := bphcl.CtyToNative(val)
	if err != nil {
		return nil, err
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", val.Type().FriendlyName())
	}
	return plan.PluginConfiguration(m), nil
}
