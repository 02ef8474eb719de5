package render

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/specialistvlad/burstplan/internal/plan"
)

// Document envelope constants.
const (
	APIVersion = "burstplan/v1"
	Kind       = "Plan"
)

// namespace scopes the name-based document IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/specialistvlad/burstplan"))

// Metadata identifies the plan a document describes.
type Metadata struct {
	ID          string `json:"id" yaml:"id"`
	Project     string `json:"project" yaml:"project"`
	ProjectName string `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	Plan        string `json:"plan" yaml:"plan"`
	Name        string `json:"name" yaml:"name"`
	Policy      string `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Spec is the body of a plan document.
type Spec struct {
	Description         string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Variables           map[string]string        `json:"variables,omitempty" yaml:"variables,omitempty"`
	PluginConfiguration plan.PluginConfiguration `json:"pluginConfiguration,omitempty" yaml:"pluginConfiguration,omitempty"`
	Permissions         []plan.Grant             `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Stages              []*plan.Stage            `json:"stages" yaml:"stages"`
}

// View is the encoder-neutral shape of a plan document.
type View struct {
	APIVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Kind       string   `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata" yaml:"metadata"`
	Spec       Spec     `json:"spec" yaml:"spec"`
}

// DocumentID returns the stable ID of the plan project/key.
func DocumentID(projectKey, planKey string) string {
	return uuid.NewSHA1(namespace, []byte(projectKey+"/"+planKey)).String()
}

// NewView builds the document view of p. The view shares no state with p.
func NewView(p *plan.Plan) *View {
	c := p.Clone()
	return &View{
		APIVersion: APIVersion,
		Kind:       Kind,
		Metadata: Metadata{
			ID:          DocumentID(c.ProjectKey, c.Key),
			Project:     c.ProjectKey,
			ProjectName: c.ProjectName,
			Plan:        c.Key,
			Name:        c.Name,
			Policy:      c.Policy,
		},
		Spec: Spec{
			Description:         c.Description,
			Variables:           c.Variables,
			PluginConfiguration: c.PluginConfiguration,
			Permissions:         c.Permissions,
			Stages:              c.Stages,
		},
	}
}

// Document is one encoded plan.
type Document struct {
	ID     string
	Plan   string
	Format string
	Body   []byte

	extension string
}

// Filename is the plan identifier plus the encoder's extension.
func (d *Document) Filename() string {
	return d.Plan + "." + d.extension
}

// Render validates p and encodes it with enc. A plan that fails validation
// is never encoded.
func Render(p *plan.Plan, enc Encoder) (*Document, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	view := NewView(p)
	body, err := enc.Encode(view)
	if err != nil {
		return nil, fmt.Errorf("encoding plan %s as %s: %w", p.Identifier(), enc.Format(), err)
	}
	return &Document{
		ID:        view.Metadata.ID,
		Plan:      p.Identifier(),
		Format:    enc.Format(),
		Body:      body,
		extension: enc.Extension(),
	}, nil
}
