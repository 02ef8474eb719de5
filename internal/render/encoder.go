package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/burstplan/internal/bphcl"
	"github.com/specialistvlad/burstplan/internal/plan"
)

// Encoder turns a document view into bytes.
type Encoder interface {
	Format() string
	Extension() string
	Encode(v *View) ([]byte, error)
}

// Format names.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHCL  = "hcl"
)

// Formats lists every format EncoderFor accepts.
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatHCL}
}

// EncoderFor returns the encoder registered under format.
func EncoderFor(format string) (Encoder, error) {
	switch format {
	case FormatJSON:
		return JSON{}, nil
	case FormatYAML, "yml":
		return YAML{}, nil
	case FormatHCL:
		return HCL{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (supported: %v)", format, Formats())
}

// JSON encodes documents as indented JSON.
type JSON struct{}

func (JSON) Format() string    { return FormatJSON }
func (JSON) Extension() string { return "json" }

func (JSON) Encode(v *View) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YAML encodes documents with gopkg.in/yaml.v3.
type YAML struct{}

func (YAML) Format() string    { return FormatYAML }
func (YAML) Extension() string { return "yaml" }

func (YAML) Encode(v *View) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HCL encodes documents as HCL native syntax.
type HCL struct{}

func (HCL) Format() string    { return FormatHCL }
func (HCL) Extension() string { return "hcl" }

func (HCL) Encode(v *View) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	root.SetAttributeValue("api_version", cty.StringVal(v.APIVersion))
	root.SetAttributeValue("kind", cty.StringVal(v.Kind))

	md := root.AppendNewBlock("metadata", nil).Body()
	md.SetAttributeValue("id", cty.StringVal(v.Metadata.ID))
	md.SetAttributeValue("project", cty.StringVal(v.Metadata.Project))
	setString(md, "project_name", v.Metadata.ProjectName)
	md.SetAttributeValue("plan", cty.StringVal(v.Metadata.Plan))
	md.SetAttributeValue("name", cty.StringVal(v.Metadata.Name))
	setString(md, "policy", v.Metadata.Policy)

	root.AppendNewline()
	setString(root, "description", v.Spec.Description)
	if err := setNative(root, "variables", v.Spec.Variables); err != nil {
		return nil, err
	}
	if err := setNative(root, "plugin_configuration", map[string]any(v.Spec.PluginConfiguration)); err != nil {
		return nil, err
	}

	for _, g := range v.Spec.Permissions {
		b := root.AppendNewBlock("permission", []string{string(g.Principal.Kind)}).Body()
		setString(b, "name", g.Principal.Name)
		caps := make([]cty.Value, len(g.Capabilities))
		for i, c := range g.Capabilities {
			caps[i] = cty.StringVal(string(c))
		}
		b.SetAttributeValue("capabilities", cty.TupleVal(caps))
	}

	for _, s := range v.Spec.Stages {
		root.AppendNewline()
		if err := writeStage(root, s); err != nil {
			return nil, err
		}
	}
	return hclwrite.Format(f.Bytes()), nil
}

func writeStage(parent *hclwrite.Body, s *plan.Stage) error {
	b := parent.AppendNewBlock("stage", []string{s.Name}).Body()
	setString(b, "description", s.Description)
	if s.Manual {
		b.SetAttributeValue("manual", cty.True)
	}
	for _, j := range s.Jobs {
		if err := writeJob(b, j); err != nil {
			return fmt.Errorf("stage %q: %w", s.Name, err)
		}
	}
	return nil
}

func writeJob(parent *hclwrite.Body, j *plan.Job) error {
	b := parent.AppendNewBlock("job", []string{j.Key}).Body()
	b.SetAttributeValue("name", cty.StringVal(j.Name))
	setString(b, "description", j.Description)
	b.SetAttributeValue("clean_working_directory", cty.BoolVal(j.CleanWorkingDirectory))
	if err := setNative(b, "plugin_configuration", map[string]any(j.PluginConfiguration)); err != nil {
		return fmt.Errorf("job %q: %w", j.Key, err)
	}

	for _, r := range j.Requirements {
		rb := b.AppendNewBlock("requirement", []string{r.Capability}).Body()
		rb.SetAttributeValue("match_type", cty.StringVal(string(r.MatchType)))
		setString(rb, "match_value", r.MatchValue)
	}
	for _, a := range j.Artifacts {
		ab := b.AppendNewBlock("artifact", []string{a.Name}).Body()
		ab.SetAttributeValue("copy_pattern", cty.StringVal(a.CopyPattern))
		ab.SetAttributeValue("shared", cty.BoolVal(a.Shared))
	}
	for _, t := range j.Tasks {
		writeTask(b, "task", t)
	}
	for _, t := range j.FinalTasks {
		writeTask(b, "final_task", t)
	}
	return nil
}

func writeTask(parent *hclwrite.Body, blockType string, t plan.Task) {
	b := parent.AppendNewBlock(blockType, []string{string(t.Interpreter)}).Body()
	setString(b, "description", t.Description)
	setString(b, "body", t.Body)
	if len(t.Environment) > 0 {
		env := make(map[string]cty.Value, len(t.Environment))
		for _, k := range t.EnvironmentKeys() {
			env[k] = cty.StringVal(t.Environment[k])
		}
		b.SetAttributeValue("environment", cty.ObjectVal(env))
	}
}

func setString(b *hclwrite.Body, name, value string) {
	if value != "" {
		b.SetAttributeValue(name, cty.StringVal(value))
	}
}

// setNative writes a map attribute, skipping empty maps.
func setNative[V any](b *hclwrite.Body, name string, m map[string]V) error {
	if len(m) == 0 {
		return nil
	}
	native := make(map[string]any, len(m))
	for k, v := range m {
		native[k] = v
	}
	val, err := bphcl.NativeToCty(native)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	b.SetAttributeValue(name, val)
	return nil
}
