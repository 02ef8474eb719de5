package plan

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PluginConfiguration is an opaque, nested key/value blob handed through to
// the CI executor untouched. Leaves are strings, bools or numbers; inner
// nodes are map[string]any or []any.
type PluginConfiguration map[string]any

// Clone returns a deep copy of the configuration.
func (c PluginConfiguration) Clone() PluginConfiguration {
	if c == nil {
		return nil
	}
	return PluginConfiguration(cloneValue(map[string]any(c)).(map[string]any))
}

// Keys returns the top-level keys in sorted order.
func (c PluginConfiguration) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Set stores value under a dot separated path, creating intermediate maps as
// needed. It fails if an intermediate segment already holds a leaf.
func (c PluginConfiguration) Set(path string, value any) error {
	segments := strings.Split(path, ".")
	cur := map[string]any(c)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg]
		if !ok {
			m := map[string]any{}
			cur[seg] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("plugin configuration: %q is not a map in path %q", seg, path)
		}
		cur = m
	}
	cur[segments[len(segments)-1]] = value
	return nil
}

// Get looks up a dot separated path.
func (c PluginConfiguration) Get(path string) (any, bool) {
	var cur any = map[string]any(c)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Merge returns a copy of c with other laid on top. Nested maps are merged
// recursively; any other value in other replaces the one in c.
func (c PluginConfiguration) Merge(other PluginConfiguration) PluginConfiguration {
	if c == nil && other == nil {
		return nil
	}
	out := c.Clone()
	if out == nil {
		out = PluginConfiguration{}
	}
	mergeInto(out, other)
	return out
}

func mergeInto(dst map[string]any, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}
		dst[k] = cloneValue(v)
	}
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, inner := range tv {
			out[k] = cloneValue(inner)
		}
		return out
	case PluginConfiguration:
		return cloneValue(map[string]any(tv))
	case []any:
		out := make([]any, len(tv))
		for i, inner := range tv {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// DefaultPlanPluginConfiguration keeps 30 days of build results.
func DefaultPlanPluginConfiguration() PluginConfiguration {
	return PluginConfiguration{
		"custom": map[string]any{
			"artifactHandlers": map[string]any{
				"useCustomArtifactHandlers": "false",
			},
			"buildExpiryConfig": map[string]any{
				"duration":         "30",
				"period":           "days",
				"labelsToKeep":     "",
				"expiryTypeResult": "true",
				"buildsToKeep":     "",
				"enabled":          "true",
			},
		},
	}
}

// DefaultJobPluginConfiguration disables hanging build detection and clover.
func DefaultJobPluginConfiguration() PluginConfiguration {
	return PluginConfiguration{
		"repositoryDefiningWorkingDirectory": -1,
		"custom": map[string]any{
			"auto": map[string]any{
				"regex": "",
				"label": "",
			},
			"buildHangingConfig": map[string]any{
				"enabled": "false",
			},
			"ncover": map[string]any{
				"path": "",
			},
			"clover": map[string]any{
				"path":               "",
				"license":            "",
				"useLocalLicenseKey": "true",
			},
		},
	}
}
