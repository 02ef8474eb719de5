package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *Plan {
	return &Plan{
		ProjectKey: "CORE",
		Key:        "GTC",
		Name:       "Core pre-merge",
		Stages: []*Stage{{
			Name: "Main",
			Jobs: []*Job{{
				Key:  "UT",
				Name: "Unit",
				Tasks: []Task{{
					Description: "composer install",
					Interpreter: InterpreterShell,
					Body:        "composer install",
					Environment: map[string]string{"COMPOSER_ROOT_VERSION": "10.0.0"},
				}},
				Requirements:        []Requirement{DockerRequirement()},
				PluginConfiguration: DefaultJobPluginConfiguration(),
			}},
		}},
		Permissions: []Grant{{
			Principal:    Principal{Kind: PrincipalGroup, Name: "TYPO3 GmbH"},
			Capabilities: []Capability{CapabilityAdmin},
		}},
		Variables:           map[string]string{"gerrit_project": "Packages/TYPO3.CMS"},
		PluginConfiguration: DefaultPlanPluginConfiguration(),
	}
}

func TestPlanClone_IsDeep(t *testing.T) {
	original := samplePlan()
	clone := original.Clone()
	require.Empty(t, cmp.Diff(original, clone))

	clone.Stages[0].Jobs[0].Tasks[0].Environment["COMPOSER_ROOT_VERSION"] = "changed"
	clone.Stages[0].Jobs[0].Requirements[0].MatchValue = "2.0"
	clone.Permissions[0].Capabilities[0] = CapabilityView
	clone.Variables["gerrit_project"] = "changed"
	custom := clone.PluginConfiguration["custom"].(map[string]any)
	custom["buildExpiryConfig"].(map[string]any)["duration"] = "1"

	assert.Equal(t, "10.0.0", original.Stages[0].Jobs[0].Tasks[0].Environment["COMPOSER_ROOT_VERSION"])
	assert.Equal(t, "1.0", original.Stages[0].Jobs[0].Requirements[0].MatchValue)
	assert.Equal(t, CapabilityAdmin, original.Permissions[0].Capabilities[0])
	assert.Equal(t, "Packages/TYPO3.CMS", original.Variables["gerrit_project"])
	duration, ok := original.PluginConfiguration.Get("custom.buildExpiryConfig.duration")
	require.True(t, ok)
	assert.Equal(t, "30", duration)
}

func TestPlanClone_Nil(t *testing.T) {
	var p *Plan
	assert.Nil(t, p.Clone())
	var j *Job
	assert.Nil(t, j.Clone())
}

func TestPluginConfiguration_SetGet(t *testing.T) {
	c := PluginConfiguration{}
	require.NoError(t, c.Set("custom.auto.label", "change-1"))
	v, ok := c.Get("custom.auto.label")
	require.True(t, ok)
	assert.Equal(t, "change-1", v)

	_, ok = c.Get("custom.missing")
	assert.False(t, ok)

	err := c.Set("custom.auto.label.deeper", "x")
	assert.ErrorContains(t, err, "is not a map")
}

func TestPluginConfiguration_Merge(t *testing.T) {
	base := DefaultJobPluginConfiguration()
	override := PluginConfiguration{
		"custom": map[string]any{
			"clover": map[string]any{"path": "typo3temp/var/tests/karma.clover.xml"},
		},
	}

	merged := base.Merge(override)

	path, _ := merged.Get("custom.clover.path")
	assert.Equal(t, "typo3temp/var/tests/karma.clover.xml", path)
	license, _ := merged.Get("custom.clover.useLocalLicenseKey")
	assert.Equal(t, "true", license, "untouched siblings survive the merge")

	basePath, _ := base.Get("custom.clover.path")
	assert.Equal(t, "", basePath, "merge must not modify the receiver")
}

func TestParseMatchType(t *testing.T) {
	for in, want := range map[string]MatchType{
		"equals": MatchEquals, "EQUALS": MatchEquals,
		"exists": MatchExists, "matches": MatchMatches,
	} {
		got, err := ParseMatchType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMatchType("like")
	assert.ErrorContains(t, err, "unknown requirement match type")
}

func TestRequirementString(t *testing.T) {
	assert.Equal(t, "system.hasDocker == 1.0", DockerRequirement().String())
	assert.Equal(t, "system.git exists", Requirement{Capability: "system.git", MatchType: MatchExists}.String())
}

func TestDefaultPluginConfiguration_PathsAreReachable(t *testing.T) {
	job := DefaultJobPluginConfiguration()
	for path, want := range map[string]any{
		"custom.buildHangingConfig.enabled": "false",
		"custom.ncover.path":                "",
		"custom.clover.useLocalLicenseKey":  "true",
	} {
		got, ok := job.Get(path)
		require.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	handlers, ok := DefaultPlanPluginConfiguration().Get("custom.artifactHandlers.useCustomArtifactHandlers")
	require.True(t, ok)
	assert.Equal(t, "false", handlers)
}

func TestDefaultPluginConfiguration_OverrideReplacesDefault(t *testing.T) {
	override := PluginConfiguration{}
	require.NoError(t, override.Set("custom.buildHangingConfig.enabled", "true"))

	merged := DefaultJobPluginConfiguration().Merge(override)

	enabled, _ := merged.Get("custom.buildHangingConfig.enabled")
	assert.Equal(t, "true", enabled)
	custom := merged["custom"].(map[string]any)
	for key := range custom {
		assert.NotContains(t, key, ".", "keys are stored nested, never dotted")
	}
}
