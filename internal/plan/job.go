package plan

import (
	"fmt"
	"slices"
)

// MatchType is the comparison an agent capability must pass for a Requirement.
type MatchType string

const (
	MatchEquals  MatchType = "equals"
	MatchExists  MatchType = "exists"
	MatchMatches MatchType = "matches"
)

// ParseMatchType accepts the lower-case names as well as the upper-case
// spelling used by Bamboo specs.
func ParseMatchType(s string) (MatchType, error) {
	switch s {
	case "equals", "EQUALS", "eq", "==":
		return MatchEquals, nil
	case "exists", "EXISTS":
		return MatchExists, nil
	case "matches", "MATCHES", "regex":
		return MatchMatches, nil
	}
	return "", fmt.Errorf("unknown requirement match type %q", s)
}

// Valid reports whether m is a known match type.
func (m MatchType) Valid() bool {
	return m == MatchEquals || m == MatchExists || m == MatchMatches
}

// Requirement is a capability predicate an agent must satisfy to run a Job.
type Requirement struct {
	Capability string    `json:"capability" yaml:"capability"`
	MatchType  MatchType `json:"matchType" yaml:"matchType"`
	MatchValue string    `json:"matchValue,omitempty" yaml:"matchValue,omitempty"`
}

// String renders the requirement as "capability == value".
func (r Requirement) String() string {
	switch r.MatchType {
	case MatchExists:
		return r.Capability + " exists"
	case MatchMatches:
		return r.Capability + " =~ " + r.MatchValue
	default:
		return r.Capability + " == " + r.MatchValue
	}
}

// DockerRequirement is the requirement every container-based job carries:
// the agent must advertise docker 1.0 support.
func DockerRequirement() Requirement {
	return Requirement{Capability: "system.hasDocker", MatchType: MatchEquals, MatchValue: "1.0"}
}

// Artifact declares output files the executor keeps after a Job finishes.
type Artifact struct {
	Name        string `json:"name" yaml:"name"`
	CopyPattern string `json:"copyPattern" yaml:"copyPattern"`
	Shared      bool   `json:"shared" yaml:"shared"`
}

// Job is an ordered sequence of Tasks run on one agent.
type Job struct {
	Key                   string              `json:"key" yaml:"key"`
	Name                  string              `json:"name" yaml:"name"`
	Description           string              `json:"description,omitempty" yaml:"description,omitempty"`
	Tasks                 []Task              `json:"tasks" yaml:"tasks"`
	FinalTasks            []Task              `json:"finalTasks,omitempty" yaml:"finalTasks,omitempty"`
	Artifacts             []Artifact          `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Requirements          []Requirement       `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	CleanWorkingDirectory bool                `json:"cleanWorkingDirectory" yaml:"cleanWorkingDirectory"`
	PluginConfiguration   PluginConfiguration `json:"pluginConfiguration,omitempty" yaml:"pluginConfiguration,omitempty"`
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	return &Job{
		Key:                   j.Key,
		Name:                  j.Name,
		Description:           j.Description,
		Tasks:                 cloneTasks(j.Tasks),
		FinalTasks:            cloneTasks(j.FinalTasks),
		Artifacts:             slices.Clone(j.Artifacts),
		Requirements:          slices.Clone(j.Requirements),
		CleanWorkingDirectory: j.CleanWorkingDirectory,
		PluginConfiguration:   j.PluginConfiguration.Clone(),
	}
}
