package render

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/burstplan/internal/plan"
)

// ErrInvalidPlan is matched by every PlanValidationError.
var ErrInvalidPlan = errors.New("invalid plan")

var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*$`)

// Violation is one problem found in a plan tree.
type Violation struct {
	// Path locates the offending node, e.g. "stages[1].jobs[0].tasks[2]".
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// PlanValidationError lists every violation found in one plan.
type PlanValidationError struct {
	Plan       string
	Violations []Violation
}

func (e *PlanValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan %s failed validation:", e.Plan)
	for _, v := range e.Violations {
		b.WriteString("\n- ")
		b.WriteString(v.String())
	}
	return b.String()
}

// Is makes errors.Is(err, ErrInvalidPlan) match.
func (e *PlanValidationError) Is(target error) bool {
	return target == ErrInvalidPlan
}

type validator struct {
	violations []Violation
}

func (v *validator) add(path, format string, args ...any) {
	v.violations = append(v.violations, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) key(path, what, key string) {
	switch {
	case key == "":
		v.add(path, "%s must not be empty", what)
	case !keyPattern.MatchString(key):
		v.add(path, "%s %q must be upper-case letters and digits, starting with a letter", what, key)
	}
}

// Validate checks the whole plan tree and returns a *PlanValidationError
// listing every violation, or nil.
func Validate(p *plan.Plan) error {
	if p == nil {
		return &PlanValidationError{Violations: []Violation{{Message: "plan is nil"}}}
	}

	v := &validator{}
	v.key("projectKey", "project key", p.ProjectKey)
	v.key("key", "plan key", p.Key)
	if p.Name == "" {
		v.add("name", "plan name must not be empty")
	}
	if len(p.Stages) == 0 {
		v.add("stages", "plan has no stages")
	}

	stageNames := map[string]int{}
	for i, s := range p.Stages {
		path := fmt.Sprintf("stages[%d]", i)
		if s == nil {
			v.add(path, "stage is nil")
			continue
		}
		if s.Name == "" {
			v.add(path+".name", "stage name must not be empty")
		} else if first, dup := stageNames[s.Name]; dup {
			v.add(path+".name", "duplicate stage name %q (first used by stages[%d])", s.Name, first)
		} else {
			stageNames[s.Name] = i
		}
		v.stage(path, s)
	}

	for i, g := range p.Permissions {
		v.grant(fmt.Sprintf("permissions[%d]", i), g)
	}

	if len(v.violations) == 0 {
		return nil
	}
	return &PlanValidationError{Plan: p.Identifier(), Violations: v.violations}
}

func (v *validator) stage(path string, s *plan.Stage) {
	if len(s.Jobs) == 0 {
		v.add(path+".jobs", "stage %q has no jobs", s.Name)
	}
	keys := map[string]int{}
	for i, j := range s.Jobs {
		jobPath := fmt.Sprintf("%s.jobs[%d]", path, i)
		if j == nil {
			v.add(jobPath, "job is nil")
			continue
		}
		v.key(jobPath+".key", "job key", j.Key)
		if j.Key != "" {
			if first, dup := keys[j.Key]; dup {
				v.add(jobPath+".key", "duplicate job key %q in stage %q: job %q (jobs[%d]) and job %q (jobs[%d])",
					j.Key, s.Name, s.Jobs[first].Name, first, j.Name, i)
			} else {
				keys[j.Key] = i
			}
		}
		v.job(jobPath, j)
	}
}

func (v *validator) job(path string, j *plan.Job) {
	if j.Name == "" {
		v.add(path+".name", "job name must not be empty")
	}
	if len(j.Tasks) == 0 {
		v.add(path+".tasks", "job %q has no tasks", j.Key)
	}
	for i, t := range j.Tasks {
		v.task(fmt.Sprintf("%s.tasks[%d]", path, i), t)
	}
	for i, t := range j.FinalTasks {
		v.task(fmt.Sprintf("%s.finalTasks[%d]", path, i), t)
	}
	for i, r := range j.Requirements {
		v.requirement(fmt.Sprintf("%s.requirements[%d]", path, i), r)
	}

	artifacts := map[string]int{}
	for i, a := range j.Artifacts {
		artPath := fmt.Sprintf("%s.artifacts[%d]", path, i)
		if a.Name == "" {
			v.add(artPath+".name", "artifact name must not be empty")
		} else if first, dup := artifacts[a.Name]; dup {
			v.add(artPath+".name", "duplicate artifact name %q (first used by artifacts[%d])", a.Name, first)
		} else {
			artifacts[a.Name] = i
		}
		if a.CopyPattern == "" {
			v.add(artPath+".copyPattern", "artifact %q has no copy pattern", a.Name)
		}
	}
}

func (v *validator) task(path string, t plan.Task) {
	if !t.Interpreter.Valid() {
		v.add(path+".interpreter", "unknown interpreter %q", t.Interpreter)
		return
	}
	if t.Interpreter.RequiresBody() && strings.TrimSpace(t.Body) == "" {
		v.add(path+".body", "%s task %q has an empty body", t.Interpreter, t.Description)
	}
}

func (v *validator) requirement(path string, r plan.Requirement) {
	if r.Capability == "" {
		v.add(path+".capability", "requirement capability must not be empty")
	}
	if !r.MatchType.Valid() {
		v.add(path+".matchType", "unknown match type %q", r.MatchType)
		return
	}
	if r.MatchType != plan.MatchExists && r.MatchValue == "" {
		v.add(path+".matchValue", "requirement %q needs a match value for %s", r.Capability, r.MatchType)
	}
	if r.MatchType == plan.MatchMatches && r.MatchValue != "" {
		if _, err := regexp.Compile(r.MatchValue); err != nil {
			v.add(path+".matchValue", "requirement %q has an invalid pattern: %v", r.Capability, err)
		}
	}
}

func (v *validator) grant(path string, g plan.Grant) {
	switch g.Principal.Kind {
	case plan.PrincipalGroup, plan.PrincipalUser:
		if g.Principal.Name == "" {
			v.add(path+".principal", "%s principal needs a name", g.Principal.Kind)
		}
	case plan.PrincipalLoggedIn, plan.PrincipalAnonymous:
	default:
		v.add(path+".principal", "unknown principal kind %q", g.Principal.Kind)
	}
	if len(g.Capabilities) == 0 {
		v.add(path+".capabilities", "grant has no capabilities")
	}
	for i, c := range g.Capabilities {
		switch c {
		case plan.CapabilityView, plan.CapabilityEdit, plan.CapabilityBuild, plan.CapabilityClone, plan.CapabilityAdmin:
		default:
			v.add(fmt.Sprintf("%s.capabilities[%d]", path, i), "unknown capability %q", c)
		}
	}
}
