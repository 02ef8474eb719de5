// Package yamlconfig is the YAML implementation of config.Loader. JSON
// descriptors are read by the same code, since JSON is a subset of YAML.
//
// Fragment descriptions, bodies and environment values are strings in
// YAML; they are parsed as HCL templates so ${param.<name>} works exactly as
// it does in HCL fragment files.
package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/ctxlog"
	"github.com/specialistvlad/burstplan/internal/fsutil"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
)

type fileDoc struct {
	Plans     []planDoc     `yaml:"plans"`
	Fragments []fragmentDoc `yaml:"fragments"`
}

type planDoc struct {
	Project             string            `yaml:"project"`
	Key                 string            `yaml:"key"`
	ProjectName         string            `yaml:"projectName"`
	Name                string            `yaml:"name"`
	Description         string            `yaml:"description"`
	Policy              string            `yaml:"policy"`
	Params              map[string]any    `yaml:"params"`
	Variables           map[string]string `yaml:"variables"`
	PluginConfiguration map[string]any    `yaml:"pluginConfiguration"`
	Stages              []stageDoc        `yaml:"stages"`
}

type stageDoc struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Manual      bool     `yaml:"manual"`
	DependsOn   []string `yaml:"dependsOn"`
	Jobs        []jobDoc `yaml:"jobs"`
}

type jobDoc struct {
	ID                    string           `yaml:"id"`
	Role                  string           `yaml:"role"`
	Key                   string           `yaml:"key"`
	Name                  string           `yaml:"name"`
	Description           string           `yaml:"description"`
	Fragments             []string         `yaml:"fragments"`
	FinalTasks            []string         `yaml:"finalTasks"`
	Backends              []string         `yaml:"backends"`
	Chunks                *int             `yaml:"chunks"`
	CleanWorkingDirectory *bool            `yaml:"cleanWorkingDirectory"`
	Params                map[string]any   `yaml:"params"`
	PluginConfiguration   map[string]any   `yaml:"pluginConfiguration"`
	Artifacts             []plan.Artifact  `yaml:"artifacts"`
	Requirements          []requirementDoc `yaml:"requirements"`
}

type requirementDoc struct {
	Capability string `yaml:"capability"`
	MatchType  string `yaml:"matchType"`
	MatchValue string `yaml:"matchValue"`
}

type fragmentDoc struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Interpreter string            `yaml:"interpreter"`
	Requires    []string          `yaml:"requires"`
	Body        string            `yaml:"body"`
	Environment map[string]string `yaml:"environment"`
}

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader reads.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// Load decodes every YAML or JSON file under paths into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := &config.Model{}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		m, err := Decode(src, file)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}

	logger.Debug("YAML loading complete.", "plans", len(model.Plans), "fragments", len(model.Fragments))
	return model, nil
}

// Decode translates one YAML document. filename is used in errors and as
// the Source of every definition.
func Decode(src []byte, filename string) (*config.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var doc fileDoc
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}

	model := &config.Model{}
	for _, p := range doc.Plans {
		def, err := translatePlan(p, filename)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		model.Plans = append(model.Plans, def)
	}
	for _, f := range doc.Fragments {
		def, err := translateFragment(f, filename)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		model.Fragments = append(model.Fragments, def)
	}
	return model, nil
}

func translatePlan(p planDoc, file string) (*config.PlanDefinition, error) {
	where := fmt.Sprintf("plan %s-%s", p.Project, p.Key)
	set, err := toSet(p.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: params: %w", where, err)
	}
	def := &config.PlanDefinition{
		ProjectKey:          p.Project,
		ProjectName:         p.ProjectName,
		Key:                 p.Key,
		Name:                p.Name,
		Description:         p.Description,
		Policy:              p.Policy,
		Params:              set,
		Variables:           p.Variables,
		PluginConfiguration: plan.PluginConfiguration(p.PluginConfiguration),
		Source:              file,
	}
	for _, s := range p.Stages {
		stage := &config.StageDefinition{
			Name:        s.Name,
			Description: s.Description,
			Manual:      s.Manual,
			DependsOn:   s.DependsOn,
		}
		for _, j := range s.Jobs {
			job, err := translateJob(j)
			if err != nil {
				return nil, fmt.Errorf("%s: job %s: %w", where, job.Address(s.Name), err)
			}
			stage.Jobs = append(stage.Jobs, job)
		}
		def.Stages = append(def.Stages, stage)
	}
	return def, nil
}

func translateJob(j jobDoc) (*config.JobDefinition, error) {
	job := &config.JobDefinition{
		ID:                    j.ID,
		Role:                  j.Role,
		Key:                   j.Key,
		Name:                  j.Name,
		Description:           j.Description,
		Fragments:             j.Fragments,
		FinalTasks:            j.FinalTasks,
		Chunks:                j.Chunks,
		Artifacts:             j.Artifacts,
		CleanWorkingDirectory: true,
		PluginConfiguration:   plan.PluginConfiguration(j.PluginConfiguration),
	}
	if job.ID == "" {
		job.ID = j.Key
	}
	if j.CleanWorkingDirectory != nil {
		job.CleanWorkingDirectory = *j.CleanWorkingDirectory
	}
	for _, raw := range j.Backends {
		b, err := params.ParseBackend(raw)
		if err != nil {
			return job, err
		}
		job.Backends = append(job.Backends, b)
	}
	set, err := toSet(j.Params)
	if err != nil {
		return job, fmt.Errorf("params: %w", err)
	}
	job.Params = set

	for _, r := range j.Requirements {
		match := plan.MatchEquals
		if r.MatchType != "" {
			if match, err = plan.ParseMatchType(r.MatchType); err != nil {
				return job, fmt.Errorf("requirement %q: %w", r.Capability, err)
			}
		}
		job.Requirements = append(job.Requirements, plan.Requirement{Capability: r.Capability, MatchType: match, MatchValue: r.MatchValue})
	}
	return job, nil
}

func toSet(raw map[string]any) (params.Set, error) {
	if len(raw) == 0 {
		return params.Set{}, nil
	}
	values := make(map[string]params.Value, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		v, err := params.FromAny(name, raw[name])
		if err != nil {
			return params.Set{}, err
		}
		values[name] = v
	}
	return params.NewSet(values), nil
}

func translateFragment(f fragmentDoc, file string) (*config.FragmentDefinition, error) {
	def := &config.FragmentDefinition{
		Name:        f.Name,
		Interpreter: f.Interpreter,
		Requires:    f.Requires,
		Source:      file,
	}
	var err error
	if def.Description, err = parseTemplate(f.Description, file); err != nil {
		return nil, fmt.Errorf("fragment %q: description: %w", f.Name, err)
	}
	if def.Body, err = parseTemplate(f.Body, file); err != nil {
		return nil, fmt.Errorf("fragment %q: body: %w", f.Name, err)
	}
	if len(f.Environment) > 0 {
		def.Environment = make(map[string]hcl.Expression, len(f.Environment))
		for _, k := range slices.Sorted(maps.Keys(f.Environment)) {
			expr, err := parseTemplate(f.Environment[k], file)
			if err != nil {
				return nil, fmt.Errorf("fragment %q: environment %s: %w", f.Name, k, err)
			}
			def.Environment[k] = expr
		}
	}
	return def, nil
}

// parseTemplate returns nil for an empty string.
func parseTemplate(src, file string) (hcl.Expression, error) {
	if src == "" {
		return nil, nil
	}
	expr, diags := hclsyntax.ParseTemplate([]byte(src), file, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	return expr, nil
}
