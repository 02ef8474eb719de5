package builder

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/specialistvlad/burstplan/internal/composer"
	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/ctxlog"
	"github.com/specialistvlad/burstplan/internal/dag"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/internal/policy"
)

// Builder turns one plan definition into a plan tree.
type Builder interface {
	Build(ctx context.Context, def *config.PlanDefinition) (*plan.Plan, error)
}

// DefaultBuilder builds plans with a Composer.
type DefaultBuilder struct {
	composer *composer.Composer
}

var _ Builder = (*DefaultBuilder)(nil)

// New creates a builder that composes jobs with c.
func New(c *composer.Composer) *DefaultBuilder {
	return &DefaultBuilder{composer: c}
}

// Build implements the Builder interface.
func (b *DefaultBuilder) Build(ctx context.Context, def *config.PlanDefinition) (*plan.Plan, error) {
	ctx, logger := ctxlog.With(ctx, "plan", def.Identifier())
	logger.Debug("Building plan.", "stages", len(def.Stages), "source", def.Source)

	stages, err := orderStages(def.Stages)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", def.Identifier(), err)
	}
	logger.Debug("Stages ordered.", "order", stageNames(stages))

	p := &plan.Plan{
		ProjectKey:          def.ProjectKey,
		ProjectName:         def.ProjectName,
		Key:                 def.Key,
		Name:                def.Name,
		Description:         def.Description,
		Variables:           maps.Clone(def.Variables),
		PluginConfiguration: plan.DefaultPlanPluginConfiguration().Merge(def.PluginConfiguration),
	}

	var errs []error
	for _, s := range stages {
		stage := &plan.Stage{Name: s.Name, Description: s.Description, Manual: s.Manual}
		for _, j := range s.Jobs {
			jobs, err := b.buildJob(ctx, def.Params, j)
			if err != nil {
				errs = append(errs, fmt.Errorf("job %s: %w", j.Address(s.Name), err))
				continue
			}
			stage.Jobs = append(stage.Jobs, jobs...)
		}
		p.Stages = append(p.Stages, stage)
	}
	if len(errs) > 0 {
		return nil, &BuildError{Plan: def.Identifier(), Errs: errs}
	}

	if def.Policy != "" {
		pol, err := policy.ByName(def.Policy)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", def.Identifier(), err)
		}
		p = policy.Bind(p, pol)
		logger.Debug("Policy bound.", "policy", pol.Name())
	}

	logger.Debug("Plan built.", "jobs", p.JobCount())
	return p, nil
}

// buildJob expands one job definition into its backend and shard variants.
func (b *DefaultBuilder) buildJob(ctx context.Context, planParams params.Set, j *config.JobDefinition) ([]*plan.Job, error) {
	set := planParams.Merge(j.Params)
	opts := composer.Options{
		Key:                   j.Key,
		Name:                  j.Name,
		Description:           j.Description,
		FinalTasks:            j.FinalTasks,
		Artifacts:             j.Artifacts,
		Requirements:          j.Requirements,
		CleanWorkingDirectory: j.CleanWorkingDirectory,
		PluginConfiguration:   j.PluginConfiguration,
	}
	if opts.Name == "" {
		opts.Name = j.ID
	}

	type variant struct {
		set  params.Set
		opts composer.Options
	}
	variants := []variant{{set: set, opts: opts}}
	if len(j.Backends) > 0 {
		variants = variants[:0]
		for _, backend := range j.Backends {
			o := opts
			o.Key = opts.Key + backend.Code()
			o.Name = opts.Name + " " + backend.Family()
			variants = append(variants, variant{
				set:  set.With(params.BackendKey, params.BackendValue(backend)),
				opts: o,
			})
		}
	}

	var jobs []*plan.Job
	for _, v := range variants {
		if j.Chunks != nil {
			sharded, err := b.composer.ComposeSharded(ctx, j.Role, j.Fragments, v.set, v.opts, *j.Chunks)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, sharded...)
			continue
		}
		job, err := b.composer.Compose(ctx, j.Role, j.Fragments, v.set, v.opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// orderStages returns stages in depends_on order.
func orderStages(stages []*config.StageDefinition) ([]*config.StageDefinition, error) {
	g := dag.New()
	byName := make(map[string]*config.StageDefinition, len(stages))
	for _, s := range stages {
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("stage %q is declared more than once", s.Name)
		}
		byName[s.Name] = s
		g.AddNode(s.Name)
	}
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", s.Name, dep)
			}
			if err := g.AddEdge(dep, s.Name); err != nil {
				return nil, fmt.Errorf("stage %q: %w", s.Name, err)
			}
		}
	}

	order, err := g.TopoSort()
	if err != nil {
		return nil, fmt.Errorf("ordering stages: %w", err)
	}
	out := make([]*config.StageDefinition, len(order))
	for i, name := range order {
		out[i] = byName[name]
	}
	return out, nil
}

func stageNames(stages []*config.StageDefinition) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.Name
	}
	return out
}

// BuildAll builds every plan in model. Plans are built independently and
// all failures are reported together. Two plans with the same identifier
// are an error.
func BuildAll(ctx context.Context, b Builder, model *config.Model) ([]*plan.Plan, error) {
	seen := map[string]string{}
	var errs []string
	var plans []*plan.Plan
	for _, def := range model.Plans {
		if first, dup := seen[def.Identifier()]; dup {
			errs = append(errs, fmt.Sprintf("plan %s in %s was already declared in %s", def.Identifier(), def.Source, first))
			continue
		}
		seen[def.Identifier()] = def.Source

		p, err := b.Build(ctx, def)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		plans = append(plans, p)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building plans failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return plans, nil
}
