package plan

import (
	"maps"
	"slices"
)

// Stage is an ordered set of Jobs the executor may run in parallel. All of
// them finish before the next Stage starts.
type Stage struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Manual      bool   `json:"manual,omitempty" yaml:"manual,omitempty"`
	Jobs        []*Job `json:"jobs" yaml:"jobs"`
}

// Clone returns a deep copy of the stage and all of its jobs.
func (s *Stage) Clone() *Stage {
	if s == nil {
		return nil
	}
	out := &Stage{Name: s.Name, Description: s.Description, Manual: s.Manual}
	if s.Jobs != nil {
		out.Jobs = make([]*Job, len(s.Jobs))
		for i, j := range s.Jobs {
			out.Jobs[i] = j.Clone()
		}
	}
	return out
}

// PrincipalKind distinguishes who a permission grant applies to.
type PrincipalKind string

const (
	PrincipalGroup     PrincipalKind = "group"
	PrincipalUser      PrincipalKind = "user"
	PrincipalLoggedIn  PrincipalKind = "logged-in"
	PrincipalAnonymous PrincipalKind = "anonymous"
)

// Principal is the subject of a permission grant. Name is empty for the
// logged-in and anonymous kinds.
type Principal struct {
	Kind PrincipalKind `json:"kind" yaml:"kind"`
	Name string        `json:"name,omitempty" yaml:"name,omitempty"`
}

// Capability is a single permission on a plan.
type Capability string

const (
	CapabilityView  Capability = "view"
	CapabilityEdit  Capability = "edit"
	CapabilityBuild Capability = "build"
	CapabilityClone Capability = "clone"
	CapabilityAdmin Capability = "admin"
)

// Grant gives a principal a set of capabilities.
type Grant struct {
	Principal    Principal    `json:"principal" yaml:"principal"`
	Capabilities []Capability `json:"capabilities" yaml:"capabilities"`
}

// Plan is the root of the tree handed to the renderer.
type Plan struct {
	ProjectKey          string              `json:"projectKey" yaml:"projectKey"`
	ProjectName         string              `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	Key                 string              `json:"key" yaml:"key"`
	Name                string              `json:"name" yaml:"name"`
	Description         string              `json:"description,omitempty" yaml:"description,omitempty"`
	Stages              []*Stage            `json:"stages" yaml:"stages"`
	Permissions         []Grant             `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Variables           map[string]string   `json:"variables,omitempty" yaml:"variables,omitempty"`
	PluginConfiguration PluginConfiguration `json:"pluginConfiguration,omitempty" yaml:"pluginConfiguration,omitempty"`
	Policy              string              `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Identifier returns "PROJECT-PLAN", the form CI systems use to address a plan.
func (p *Plan) Identifier() string {
	return p.ProjectKey + "-" + p.Key
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := &Plan{
		ProjectKey:          p.ProjectKey,
		ProjectName:         p.ProjectName,
		Key:                 p.Key,
		Name:                p.Name,
		Description:         p.Description,
		PluginConfiguration: p.PluginConfiguration.Clone(),
		Policy:              p.Policy,
	}
	if p.Stages != nil {
		out.Stages = make([]*Stage, len(p.Stages))
		for i, s := range p.Stages {
			out.Stages[i] = s.Clone()
		}
	}
	if p.Permissions != nil {
		out.Permissions = make([]Grant, len(p.Permissions))
		for i, g := range p.Permissions {
			out.Permissions[i] = Grant{Principal: g.Principal, Capabilities: slices.Clone(g.Capabilities)}
		}
	}
	if p.Variables != nil {
		out.Variables = maps.Clone(p.Variables)
	}
	return out
}

// JobCount returns the number of jobs across all stages.
func (p *Plan) JobCount() int {
	n := 0
	for _, s := range p.Stages {
		n += len(s.Jobs)
	}
	return n
}
