// Package schema holds the gohcl decoding structs for descriptor files.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Descriptor files ---

// Attributes captures a block whose attributes are free-form, such as
// `params` and `variables`.
type Attributes struct {
	Body hcl.Body `hcl:",remain"`
}

// Locals is a `locals` block. Its attributes are evaluated before anything
// else in the file set and exposed as local.<name>.
type Locals struct {
	Body hcl.Body `hcl:",remain"`
}

// Artifact is an `artifact "name" { ... }` block inside a job.
type Artifact struct {
	Name        string `hcl:"name,label"`
	CopyPattern string `hcl:"copy_pattern"`
	Shared      bool   `hcl:"shared,optional"`
}

// Requirement is a `requirement "capability" { ... }` block inside a job.
type Requirement struct {
	Capability string `hcl:"capability,label"`
	MatchType  string `hcl:"match_type,optional"`
	MatchValue string `hcl:"match_value,optional"`
}

// Job is a `job "id" { ... }` block inside a stage.
type Job struct {
	ID                    string         `hcl:"id,label"`
	Role                  string         `hcl:"role"`
	Key                   string         `hcl:"key"`
	Name                  string         `hcl:"name,optional"`
	Description           string         `hcl:"description,optional"`
	Fragments             []string       `hcl:"fragments"`
	FinalTasks            []string       `hcl:"final_tasks,optional"`
	Backends              []string       `hcl:"backends,optional"`
	Chunks                *int           `hcl:"chunks,optional"`
	CleanWorkingDirectory *bool          `hcl:"clean_working_directory,optional"`
	PluginConfiguration   hcl.Expression `hcl:"plugin_configuration,optional"`
	Params                *Attributes    `hcl:"params,block"`
	Artifacts             []*Artifact    `hcl:"artifact,block"`
	Requirements          []*Requirement `hcl:"requirement,block"`
}

// Stage is a `stage "name" { ... }` block inside a plan.
type Stage struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Manual      bool     `hcl:"manual,optional"`
	DependsOn   []string `hcl:"depends_on,optional"`
	Jobs        []*Job   `hcl:"job,block"`
}

// Plan is a `plan "PROJECT" "KEY" { ... }` block.
type Plan struct {
	ProjectKey          string         `hcl:"project_key,label"`
	Key                 string         `hcl:"key,label"`
	ProjectName         string         `hcl:"project_name,optional"`
	Name                string         `hcl:"name,optional"`
	Description         string         `hcl:"description,optional"`
	Policy              string         `hcl:"policy,optional"`
	PluginConfiguration hcl.Expression `hcl:"plugin_configuration,optional"`
	Params              *Attributes    `hcl:"params,block"`
	Variables           *Attributes    `hcl:"variables,block"`
	Stages              []*Stage       `hcl:"stage,block"`
}

// --- Fragment definitions ---

// Fragment is a `fragment "name" { ... }` block. Its expressions are kept
// unevaluated; they are templates over param.<name>.
type Fragment struct {
	Name        string         `hcl:"name,label"`
	Description hcl.Expression `hcl:"description,optional"`
	Interpreter string         `hcl:"interpreter,optional"`
	Requires    []string       `hcl:"requires,optional"`
	Body        hcl.Expression `hcl:"body,optional"`
	Environment hcl.Expression `hcl:"environment,optional"`
}

// File is the top-level structure of any descriptor or fragment file.
type File struct {
	Locals    []*Locals   `hcl:"locals,block"`
	Plans     []*Plan     `hcl:"plan,block"`
	Fragments []*Fragment `hcl:"fragment,block"`
}
