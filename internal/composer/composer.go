package composer

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/burstplan/internal/ctxlog"
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/internal/shard"
)

// DefaultSafetyNet is the fragment prepended to every job so a job always
// starts from a clean container state.
const DefaultSafetyNet = "cleanup-containers"

// Options describe one job on top of its role profile.
type Options struct {
	Key         string
	Name        string
	Description string
	// FinalTasks are fragment names run after the job, even when it fails.
	FinalTasks            []string
	Artifacts             []plan.Artifact
	Requirements          []plan.Requirement
	CleanWorkingDirectory bool
	PluginConfiguration   plan.PluginConfiguration
}

// Composer turns fragment names into Jobs. It is safe for concurrent use
// once roles are registered.
type Composer struct {
	lib       *fragment.Library
	safetyNet string

	mu    sync.RWMutex
	roles map[string]Profile
}

// Option configures a Composer.
type Option func(*Composer)

// WithSafetyNet changes the fragment prepended to every job. An empty name
// disables the prepend.
func WithSafetyNet(name string) Option {
	return func(c *Composer) { c.safetyNet = name }
}

// New creates a Composer over lib with the built-in role profiles.
func New(lib *fragment.Library, opts ...Option) *Composer {
	c := &Composer{
		lib:       lib,
		safetyNet: DefaultSafetyNet,
		roles:     DefaultProfiles(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SafetyNet returns the fragment prepended to every job, or "" if disabled.
func (c *Composer) SafetyNet() string { return c.safetyNet }

// Roles returns the registered role names in sorted order.
func (c *Composer) Roles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.roles))
	for r := range c.roles {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Compose renders names in order against set and returns a complete Job.
// The first failure aborts composition; no partial Job is ever returned.
func (c *Composer) Compose(ctx context.Context, role string, names []string, set params.Set, opts Options) (*plan.Job, error) {
	fail := func(fragmentName string, err error) error {
		return &CompositionError{Role: role, Key: opts.Key, Fragment: fragmentName, Err: err}
	}

	profile, err := c.Profile(role)
	if err != nil {
		return nil, fail("", err)
	}
	if opts.Key == "" {
		return nil, fail("", fmt.Errorf("job key must not be empty"))
	}
	if len(names) == 0 {
		return nil, fail("", fmt.Errorf("job has no fragments"))
	}

	logger := ctxlog.FromContext(ctx)
	sequence := c.withSafetyNet(names)
	logger.Debug("Composing job.", "role", role, "key", opts.Key, "fragments", sequence)

	tasks, failedAt, err := c.renderAll(sequence, set)
	if err != nil {
		return nil, fail(failedAt, err)
	}

	finals := mergeNames(profile.FinalTasks, opts.FinalTasks)
	finalTasks, failedAt, err := c.renderAll(finals, set)
	if err != nil {
		return nil, fail(failedAt, err)
	}

	job := &plan.Job{
		Key:                   opts.Key,
		Name:                  opts.Name,
		Description:           opts.Description,
		Tasks:                 tasks,
		FinalTasks:            finalTasks,
		Artifacts:             mergeArtifacts(profile.Artifacts, opts.Artifacts),
		Requirements:          mergeRequirements(profile.Requirements, opts.Requirements),
		CleanWorkingDirectory: opts.CleanWorkingDirectory,
		PluginConfiguration: plan.DefaultJobPluginConfiguration().
			Merge(profile.PluginConfiguration).
			Merge(opts.PluginConfiguration),
	}
	if job.Name == "" {
		job.Name = job.Key
	}
	logger.Debug("Composed job.", "key", job.Key, "tasks", len(job.Tasks), "final_tasks", len(job.FinalTasks))
	return job, nil
}

// ComposeSharded composes one job per shard of total. Every shard gets the
// chunk_index, chunk_label and chunk_count placeholders bound on top of set.
// Keys and names are suffixed with the shard label. Either every shard
// composes or none is returned.
func (c *Composer) ComposeSharded(ctx context.Context, role string, names []string, set params.Set, opts Options, total int) ([]*plan.Job, error) {
	shards, err := shard.Plan(total)
	if err != nil {
		return nil, &CompositionError{Role: role, Key: opts.Key, Err: err}
	}

	jobs := make([]*plan.Job, 0, total)
	for d := range shards {
		shardSet := set.
			With(params.ChunkIndexKey, params.Int(d.Index)).
			With(params.ChunkLabelKey, params.String(d.Label)).
			With(params.ChunkCountKey, params.Int(d.Total))

		shardOpts := opts
		shardOpts.Key = opts.Key + d.Label
		shardOpts.Name = opts.Name + " " + d.Label
		if opts.Name == "" {
			shardOpts.Name = shardOpts.Key
		}

		job, err := c.Compose(ctx, role, names, shardSet, shardOpts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (c *Composer) withSafetyNet(names []string) []string {
	if c.safetyNet == "" || slices.Contains(names, c.safetyNet) {
		return slices.Clone(names)
	}
	return append([]string{c.safetyNet}, names...)
}

// renderAll renders names in order. On failure it returns the name of the
// fragment that failed.
func (c *Composer) renderAll(names []string, set params.Set) ([]plan.Task, string, error) {
	if len(names) == 0 {
		return nil, "", nil
	}
	tasks := make([]plan.Task, 0, len(names))
	for _, name := range names {
		f, err := c.lib.Get(name)
		if err != nil {
			return nil, name, err
		}
		task, err := f.Render(set)
		if err != nil {
			return nil, name, err
		}
		tasks = append(tasks, task)
	}
	return tasks, "", nil
}

func mergeNames(base, extra []string) []string {
	var out []string
	for _, n := range slices.Concat(base, extra) {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// mergeArtifacts keeps the first artifact of each name.
func mergeArtifacts(base, extra []plan.Artifact) []plan.Artifact {
	var out []plan.Artifact
	for _, a := range slices.Concat(base, extra) {
		if !slices.ContainsFunc(out, func(o plan.Artifact) bool { return o.Name == a.Name }) {
			out = append(out, a)
		}
	}
	return out
}

func mergeRequirements(base, extra []plan.Requirement) []plan.Requirement {
	var out []plan.Requirement
	for _, r := range slices.Concat(base, extra) {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
