package yamlconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
)

const corePlan = `
plans:
  - project: CORE
    key: GTC
    name: Core pre-merge
    policy: restricted-security
    params:
      image: typo3gmbh/php74
      backend: pgsql
    variables:
      composer_root_version: "10.0.0"
    pluginConfiguration:
      custom:
        buildExpiryConfig:
          duration: "7"
    stages:
      - name: Main
        jobs:
          - key: AC
            role: acceptance
            name: Acceptance
            chunks: 8
            backends: [mariadb]
            cleanWorkingDirectory: false
            fragments: [checkout, run-codeception-backend]
            params:
              retries: 2
            artifacts:
              - name: Logs
                copyPattern: typo3temp/var/log/*
                shared: true
            requirements:
              - capability: system.hasDocker
                matchValue: "1.0"
`

func TestDecode_Plan(t *testing.T) {
	model, err := Decode([]byte(corePlan), "core.yaml")
	require.NoError(t, err)
	require.Len(t, model.Plans, 1)

	p := model.Plans[0]
	assert.Equal(t, "CORE-GTC", p.Identifier())
	assert.Equal(t, "restricted-security", p.Policy)
	assert.Equal(t, "core.yaml", p.Source)

	backend, err := p.Params.Backend(params.BackendKey)
	require.NoError(t, err)
	assert.Equal(t, params.BackendPostgres10, backend)
	duration, _ := p.PluginConfiguration.Get("custom.buildExpiryConfig.duration")
	assert.Equal(t, "7", duration)

	job := p.Stages[0].Jobs[0]
	assert.Equal(t, "AC", job.ID, "id defaults to the key")
	require.NotNil(t, job.Chunks)
	assert.Equal(t, 8, *job.Chunks)
	assert.False(t, job.CleanWorkingDirectory)
	assert.Equal(t, []params.Backend{params.BackendMariaDB10}, job.Backends)
	retries, err := job.Params.Int("retries")
	require.NoError(t, err)
	assert.Equal(t, 2, retries)
	assert.Equal(t, []plan.Artifact{{Name: "Logs", CopyPattern: "typo3temp/var/log/*", Shared: true}}, job.Artifacts)
	assert.Equal(t, []plan.Requirement{plan.DockerRequirement()}, job.Requirements)
}

func TestDecode_Fragments(t *testing.T) {
	src := `
fragments:
  - name: run-phpstan
    description: Run phpstan on ${param.image}
    requires: [level]
    body: |
      phpstan analyse --level ${param.level}
    environment:
      IMAGE: ${param.image}
`
	model, err := Decode([]byte(src), "fragments.yaml")
	require.NoError(t, err)
	require.Len(t, model.Fragments, 1)

	f := model.Fragments[0]
	assert.Equal(t, []string{"level"}, f.Requires)
	require.NotNil(t, f.Body)

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{
		"param": cty.ObjectVal(map[string]cty.Value{"level": cty.StringVal("8"), "image": cty.StringVal("php74")}),
	}}
	body, diags := f.Body.Value(evalCtx)
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, "phpstan analyse --level 8\n", body.AsString())

	env, diags := f.Environment["IMAGE"].Value(evalCtx)
	require.False(t, diags.HasErrors())
	assert.Equal(t, "php74", env.AsString())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unknown field", "plans:\n  - project: CORE\n    colour: red\n", "field colour not found"},
		{"bad backend", "plans:\n  - project: CORE\n    key: GTC\n    stages:\n      - name: Main\n        jobs:\n          - key: F\n            backends: [oracle]\n", `job Main.F: unknown database backend "oracle"`},
		{"bad template", "fragments:\n  - name: x\n    body: \"${param.\"\n", `fragment "x": body`},
		{"fractional param", "plans:\n  - project: CORE\n    params:\n      chunk_count: 1.5\n", "not a whole number"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.src), "x.yaml")
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_DirectoryWithJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(corePlan), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"),
		[]byte(`{"plans": [{"project": "CORE", "key": "NIGHTLY", "name": "Nightly"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.hcl"), []byte("not yaml: ["), 0o644))

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Plans, 2)
	assert.Equal(t, "CORE-GTC", model.Plans[0].Identifier())
	assert.Equal(t, "CORE-NIGHTLY", model.Plans[1].Identifier())
}

func TestDecode_Empty(t *testing.T) {
	model, err := Decode(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, model.Plans)
}

func TestDecode_ChunksKeepExplicitValues(t *testing.T) {
	for _, tc := range []struct {
		line string
		want *int
	}{
		{line: "", want: nil},
		{line: "chunks: 0", want: ptr(0)},
		{line: "chunks: -1", want: ptr(-1)},
	} {
		src := `
plans:
  - project: CORE
    key: X
    name: X
    stages:
      - name: Main
        jobs:
          - key: UT
            role: unit
            fragments: [checkout]
            ` + tc.line + `
`
		model, err := Decode([]byte(src), "chunks.yaml")
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, model.Plans[0].Stages[0].Jobs[0].Chunks, tc.line)
	}
}

func ptr(n int) *int { return &n }
