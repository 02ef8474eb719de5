package fragment

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/burstplan/internal/bpexpr"
	"github.com/specialistvlad/burstplan/internal/bphcl"
	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
)

// paramRoot is the variable expression templates read bindings from.
const paramRoot = "param"

// RegisterDefinition compiles an expression fragment and adds it to the
// library. Its required placeholders are the declared ones followed by any
// other param.<name> the templates read.
func (l *Library) RegisterDefinition(def *config.FragmentDefinition) error {
	f, err := compileDefinition(def)
	if err != nil {
		return err
	}
	return l.add(f)
}

// RegisterDefinitions registers every definition and reports all failures together.
func (l *Library) RegisterDefinitions(defs []*config.FragmentDefinition) error {
	var errs []string
	for _, def := range defs {
		if err := l.RegisterDefinition(def); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("loading fragments failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func compileDefinition(def *config.FragmentDefinition) (*Fragment, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%s: fragment name must not be empty", def.Source)
	}

	interpreter := plan.Interpreter(def.Interpreter)
	if interpreter == "" {
		interpreter = plan.InterpreterShell
	}
	if !interpreter.Valid() {
		return nil, fmt.Errorf("%s: fragment %q: unknown interpreter %q", def.Source, def.Name, def.Interpreter)
	}
	if interpreter.RequiresBody() && !bphcl.IsExprDefined(def.Body) {
		return nil, fmt.Errorf("%s: fragment %q: a %s fragment needs a body", def.Source, def.Name, interpreter)
	}

	exprs := bpexpr.NewContainer()
	exprs.Add(def.Description, def.Body)
	envKeys := slices.Sorted(maps.Keys(def.Environment))
	for _, k := range envKeys {
		exprs.Add(def.Environment[k])
	}

	funcs := bphcl.Functions()
	for _, name := range exprs.CalledFunctions() {
		if _, ok := funcs[name]; !ok {
			return nil, fmt.Errorf("%s: fragment %q: call to unknown function %q", def.Source, def.Name, name)
		}
	}
	for _, ref := range exprs.References() {
		if ref.RootName() != paramRoot {
			return nil, fmt.Errorf("%s: fragment %q: templates may only reference %s.<name>, found %s",
				def.Source, def.Name, paramRoot, bphcl.TraversalKey(ref))
		}
	}

	tmpl := &exprTemplate{
		name:        def.Name,
		interpreter: interpreter,
		description: def.Description,
		body:        def.Body,
		environment: def.Environment,
		envKeys:     envKeys,
		funcs:       funcs,
	}
	return &Fragment{
		name:     def.Name,
		required: dedupe(append(slices.Clone(def.Requires), exprs.RootNames(paramRoot)...)),
		template: tmpl.render,
		source:   def.Source,
	}, nil
}

type exprTemplate struct {
	name        string
	interpreter plan.Interpreter
	description hcl.Expression
	body        hcl.Expression
	environment map[string]hcl.Expression
	envKeys     []string
	funcs       map[string]function.Function
}

func (t *exprTemplate) render(set params.Set) (plan.Task, error) {
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{paramRoot: set.ToCty()},
		Functions: t.funcs,
	}

	task := plan.Task{Description: t.name, Interpreter: t.interpreter}

	if bphcl.IsExprDefined(t.description) {
		s, err := evalString(evalCtx, t.description)
		if err != nil {
			return plan.Task{}, fmt.Errorf("description: %w", err)
		}
		task.Description = s
	}
	if bphcl.IsExprDefined(t.body) {
		s, err := evalString(evalCtx, t.body)
		if err != nil {
			return plan.Task{}, fmt.Errorf("body: %w", err)
		}
		task.Body = s
	}
	if len(t.envKeys) > 0 {
		task.Environment = make(map[string]string, len(t.envKeys))
		for _, k := range t.envKeys {
			s, err := evalString(evalCtx, t.environment[k])
			if err != nil {
				return plan.Task{}, fmt.Errorf("environment %s: %w", k, err)
			}
			task.Environment[k] = s
		}
	}
	return task, nil
}

func evalString(evalCtx *hcl.EvalContext, expr hcl.Expression) (string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", nil
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("expected a string, got %s", val.Type().FriendlyName())
	}
	return str.AsString(), nil
}
