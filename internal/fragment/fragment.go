package fragment

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
)

// TemplateFunc renders a task from bound placeholders. It must not keep or
// modify anything outside the returned task.
type TemplateFunc func(set params.Set) (plan.Task, error)

// SourceCompiled marks fragments registered from Go code.
const SourceCompiled = "compiled"

// Fragment is a named template plus the placeholders it needs.
type Fragment struct {
	name     string
	required []string
	template TemplateFunc
	source   string
}

// Name returns the fragment's registered name.
func (f *Fragment) Name() string { return f.name }

// Required returns the placeholder names the fragment needs, in declaration order.
func (f *Fragment) Required() []string { return slices.Clone(f.required) }

// Source is SourceCompiled or the file an expression fragment was read from.
func (f *Fragment) Source() string { return f.source }

// Render checks that every required placeholder is bound and then runs the
// template. The returned task is owned by the caller.
func (f *Fragment) Render(set params.Set) (plan.Task, error) {
	if missing := set.Missing(f.required...); len(missing) > 0 {
		return plan.Task{}, &params.MissingRequiredParameterError{Fragment: f.name, Names: missing}
	}
	task, err := f.template(set)
	if err != nil {
		return plan.Task{}, fmt.Errorf("fragment %q: %w", f.name, err)
	}
	if task.Interpreter == "" {
		task.Interpreter = plan.InterpreterShell
	}
	return task.Clone(), nil
}

// dedupe keeps the first occurrence of each name.
func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
