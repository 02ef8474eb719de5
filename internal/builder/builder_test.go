package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/burstplan/internal/composer"
	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/dag"
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/internal/shard"
	composermod "github.com/specialistvlad/burstplan/modules/composer"
	"github.com/specialistvlad/burstplan/modules/containers"
	"github.com/specialistvlad/burstplan/modules/phpunit"
	"github.com/specialistvlad/burstplan/modules/quality"
	"github.com/specialistvlad/burstplan/modules/reporting"
	"github.com/specialistvlad/burstplan/modules/vcs"
)

func newBuilder(t *testing.T) *DefaultBuilder {
	t.Helper()
	lib := fragment.NewLibrary()
	for _, m := range []fragment.Module{
		&vcs.Module{}, &containers.Module{}, &composermod.Module{},
		&phpunit.Module{}, &quality.Module{}, &reporting.Module{},
	} {
		m.Register(lib)
	}
	return New(composer.New(lib))
}

func chunks(n int) *int { return &n }

func sampleDefinition() *config.PlanDefinition {
	return &config.PlanDefinition{
		ProjectKey: "CORE",
		Key:        "GTC",
		Name:       "Core pre-merge",
		Policy:     "open-core",
		Params:     params.NewSet(map[string]params.Value{"image": params.String("typo3gmbh/php74")}),
		Variables:  map[string]string{"composer_root_version": "10.0.0"},
		Source:     "core.hcl",
		Stages: []*config.StageDefinition{
			{
				Name:      "Main",
				DependsOn: []string{"Early"},
				Jobs: []*config.JobDefinition{{
					ID:        "functional",
					Role:      composer.RoleFunctional,
					Key:       "F",
					Name:      "Functional",
					Backends:  []params.Backend{params.BackendMariaDB10, params.BackendPostgres10},
					Chunks:    chunks(2),
					Fragments: []string{"checkout", "composer-install", "start-functional-deps", "split-functional", "run-phpunit-functional"},
				}},
			},
			{
				Name: "Early",
				Jobs: []*config.JobDefinition{{
					ID:                    "lint",
					Role:                  composer.RoleLint,
					Key:                   "L",
					Fragments:             []string{"checkout", "lint-php"},
					CleanWorkingDirectory: true,
				}},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	p, err := newBuilder(t).Build(context.Background(), sampleDefinition())
	require.NoError(t, err)

	require.Len(t, p.Stages, 2)
	assert.Equal(t, "Early", p.Stages[0].Name, "depends_on moves Main after Early")
	assert.Equal(t, "Main", p.Stages[1].Name)

	lint := p.Stages[0].Jobs[0]
	assert.Equal(t, "L", lint.Key)
	assert.Equal(t, "lint", lint.Name, "name defaults to the job id")
	assert.True(t, lint.CleanWorkingDirectory)

	var keys, names []string
	for _, j := range p.Stages[1].Jobs {
		keys = append(keys, j.Key)
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"FMY1", "FMY2", "FPG1", "FPG2"}, keys)
	assert.Equal(t, []string{"Functional mysql 1", "Functional mysql 2", "Functional pgsql 1", "Functional pgsql 2"}, names)

	assert.Equal(t, "open-core", p.Policy)
	assert.Len(t, p.Permissions, 4)
	assert.Equal(t, "Packages/TYPO3.CMS", p.Variables["gerrit_project"])
	assert.Equal(t, "10.0.0", p.Variables["composer_root_version"])
	duration, _ := p.PluginConfiguration.Get("custom.buildExpiryConfig.duration")
	assert.Equal(t, "30", duration)
}

func TestBuild_ReportsEveryFailingJob(t *testing.T) {
	def := sampleDefinition()
	def.Params = params.Set{}

	_, err := newBuilder(t).Build(context.Background(), def)
	require.Error(t, err)
	assert.ErrorContains(t, err, "building plan CORE-GTC failed:")
	assert.ErrorContains(t, err, "job Early.lint:")
	assert.ErrorContains(t, err, "job Main.functional:")
}

func TestBuild_StageErrors(t *testing.T) {
	ctx := context.Background()
	b := newBuilder(t)

	def := sampleDefinition()
	def.Stages[0].DependsOn = []string{"Nope"}
	_, err := b.Build(ctx, def)
	assert.ErrorContains(t, err, `stage "Main" depends on unknown stage "Nope"`)

	def = sampleDefinition()
	def.Stages[1].DependsOn = []string{"Main"}
	_, err = b.Build(ctx, def)
	assert.ErrorIs(t, err, dag.ErrCycle)

	def = sampleDefinition()
	def.Stages[1].Name = "Main"
	def.Stages[0].DependsOn = nil
	_, err = b.Build(ctx, def)
	assert.ErrorContains(t, err, `stage "Main" is declared more than once`)
}

func TestBuild_UnknownPolicy(t *testing.T) {
	def := sampleDefinition()
	def.Policy = "public"
	_, err := newBuilder(t).Build(context.Background(), def)
	assert.ErrorContains(t, err, `unknown policy "public"`)
}

func TestBuild_JobParamsOverridePlanParams(t *testing.T) {
	def := sampleDefinition()
	def.Stages[1].Jobs[0].Params = params.NewSet(map[string]params.Value{"image": params.String("typo3gmbh/php73")})

	p, err := newBuilder(t).Build(context.Background(), def)
	require.NoError(t, err)
	lint := p.Stages[0].Jobs[0]
	assert.Contains(t, lint.Tasks[len(lint.Tasks)-1].Body, "typo3gmbh/php73:latest")
	functional := p.Stages[1].Jobs[0]
	assert.Contains(t, functional.Tasks[len(functional.Tasks)-1].Body, "typo3gmbh/php74:latest")
}

func TestBuildAll(t *testing.T) {
	b := newBuilder(t)
	second := sampleDefinition()
	second.Key = "NIGHTLY"

	plans, err := BuildAll(context.Background(), b, &config.Model{Plans: []*config.PlanDefinition{sampleDefinition(), second}})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "CORE-NIGHTLY", plans[1].Identifier())

	dup := sampleDefinition()
	dup.Source = "other.hcl"
	_, err = BuildAll(context.Background(), b, &config.Model{Plans: []*config.PlanDefinition{sampleDefinition(), dup}})
	assert.ErrorContains(t, err, "plan CORE-GTC in other.hcl was already declared in core.hcl")
}

func TestBuild_DefinitionIsNotModified(t *testing.T) {
	def := sampleDefinition()
	p, err := newBuilder(t).Build(context.Background(), def)
	require.NoError(t, err)

	p.Variables["composer_root_version"] = "changed"
	assert.Equal(t, "10.0.0", def.Variables["composer_root_version"])
	assert.Equal(t, plan.InterpreterCheckout, p.Stages[0].Jobs[0].Tasks[1].Interpreter)
}

func TestBuild_RejectsShardCountBelowOne(t *testing.T) {
	for _, total := range []int{0, -1, -3} {
		def := sampleDefinition()
		def.Stages[0].Jobs[0].Chunks = chunks(total)

		p, err := newBuilder(t).Build(context.Background(), def)
		require.Error(t, err, "chunks = %d", total)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, shard.ErrInvalidShardCount)
		assert.ErrorIs(t, err, composer.ErrComposition)

		var buildErr *BuildError
		require.ErrorAs(t, err, &buildErr)
		assert.Equal(t, "CORE-GTC", buildErr.Plan)
		assert.ErrorContains(t, err, "job Main.functional:")
	}
}

func TestBuild_UnsetChunksBuildsOneJobPerBackend(t *testing.T) {
	def := sampleDefinition()
	def.Stages[0].Jobs[0].Chunks = nil
	def.Stages[0].Jobs[0].Fragments = []string{"checkout", "composer-install", "start-functional-deps"}

	p, err := newBuilder(t).Build(context.Background(), def)
	require.NoError(t, err)
	var keys []string
	for _, j := range p.Stages[1].Jobs {
		keys = append(keys, j.Key)
	}
	assert.Equal(t, []string{"FMY", "FPG"}, keys)
}
