package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
)

// Model is the unified representation of everything read from descriptor
// files: plan definitions and expression fragments.
type Model struct {
	Plans     []*PlanDefinition
	Fragments []*FragmentDefinition
}

// Merge appends other's definitions after m's.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Plans = append(m.Plans, other.Plans...)
	m.Fragments = append(m.Fragments, other.Fragments...)
}

// PlanDefinition is the format-agnostic form of a `plan` block.
type PlanDefinition struct {
	ProjectKey          string
	ProjectName         string
	Key                 string
	Name                string
	Description         string
	Policy              string
	Params              params.Set
	Variables           map[string]string
	PluginConfiguration plan.PluginConfiguration
	Stages              []*StageDefinition
	// Source is the file the plan was declared in.
	Source string
}

// Identifier returns "PROJECT-PLAN".
func (p *PlanDefinition) Identifier() string {
	return p.ProjectKey + "-" + p.Key
}

// StageDefinition is the format-agnostic form of a `stage` block.
type StageDefinition struct {
	Name        string
	Description string
	Manual      bool
	DependsOn   []string
	Jobs        []*JobDefinition
}

// JobDefinition is the format-agnostic form of a `job` block. A job with
// backends expands to one job per backend; a set Chunks shards each of them.
type JobDefinition struct {
	// ID is the block label, used in error messages.
	ID                    string
	Role                  string
	Key                   string
	Name                  string
	Description           string
	Fragments             []string
	FinalTasks            []string
	Backends              []params.Backend
	// Chunks is nil for an unsharded job. A set value below one is rejected
	// when the job is built.
	Chunks                *int
	Params                params.Set
	Artifacts             []plan.Artifact
	Requirements          []plan.Requirement
	CleanWorkingDirectory bool
	PluginConfiguration   plan.PluginConfiguration
}

// Address returns "stage.job" for error messages.
func (j *JobDefinition) Address(stage string) string {
	return fmt.Sprintf("%s.%s", stage, j.ID)
}

// FragmentDefinition is an expression fragment. Description, Body and the
// Environment values are HCL templates over param.<name>.
type FragmentDefinition struct {
	Name        string
	Description hcl.Expression
	Interpreter string
	Requires    []string
	Body        hcl.Expression
	Environment map[string]hcl.Expression
	// Source is the file the fragment was declared in.
	Source string
}
