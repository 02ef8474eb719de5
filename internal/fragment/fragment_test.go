package fragment

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(body string) TemplateFunc {
	return func(params.Set) (plan.Task, error) {
		return plan.Task{Description: body, Interpreter: plan.InterpreterShell, Body: body}, nil
	}
}

func TestLibrary_RegisterAndGet(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.Register("checkout", nil, func(params.Set) (plan.Task, error) {
		return plan.Task{Description: "Checkout", Interpreter: plan.InterpreterCheckout}, nil
	}))
	require.NoError(t, lib.Register("run-phpunit", []string{"image", "image", ""}, echo("phpunit")))

	f, err := lib.Get("run-phpunit")
	require.NoError(t, err)
	assert.Equal(t, "run-phpunit", f.Name())
	assert.Equal(t, []string{"image"}, f.Required(), "required names are de-duplicated")
	assert.Equal(t, SourceCompiled, f.Source())

	assert.Equal(t, []string{"checkout", "run-phpunit"}, lib.Names())
	assert.Equal(t, 2, lib.Len())
	assert.True(t, lib.Has("checkout"))
}

func TestLibrary_RegisterRejects(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.Register("a", nil, echo("a")))

	err := lib.Register("a", nil, echo("again"))
	assert.ErrorIs(t, err, ErrDuplicateFragment)

	assert.ErrorContains(t, lib.Register("", nil, echo("x")), "name must not be empty")
	assert.ErrorContains(t, lib.Register("nil", nil, nil), "template must not be nil")

	assert.Panics(t, func() { lib.MustRegister("a", nil, echo("a")) })
}

func TestLibrary_GetUnknown(t *testing.T) {
	_, err := NewLibrary().Get("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFragment))

	var unknown *UnknownFragmentError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}

func TestFragment_RenderChecksRequired(t *testing.T) {
	lib := NewLibrary()
	lib.MustRegister("start-deps", []string{"backend", "image"}, func(set params.Set) (plan.Task, error) {
		b, err := set.Backend("backend")
		if err != nil {
			return plan.Task{}, err
		}
		return plan.Task{Interpreter: plan.InterpreterShell, Body: "up " + string(b), Environment: map[string]string{"A": "1"}}, nil
	})
	f, err := lib.Get("start-deps")
	require.NoError(t, err)

	_, err = f.Render(params.NewSet(map[string]params.Value{"image": params.String("php")}))
	var missing *params.MissingRequiredParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "start-deps", missing.Fragment)
	assert.Equal(t, []string{"backend"}, missing.Names)

	set := params.NewSet(map[string]params.Value{
		"image":   params.String("php"),
		"backend": params.BackendValue(params.BackendPostgres10),
	})
	first, err := f.Render(set)
	require.NoError(t, err)
	assert.Equal(t, "up postgres10", first.Body)

	first.Environment["A"] = "changed"
	second, err := f.Render(set)
	require.NoError(t, err)
	assert.Equal(t, "1", second.Environment["A"], "each render returns an independent task")
}

func TestFragment_RenderWrapsTemplateErrors(t *testing.T) {
	lib := NewLibrary()
	lib.MustRegister("broken", nil, func(params.Set) (plan.Task, error) {
		return plan.Task{}, errors.New("boom")
	})
	f, _ := lib.Get("broken")
	_, err := f.Render(params.Set{})
	assert.EqualError(t, err, `fragment "broken": boom`)
}

func TestLibrary_Validate(t *testing.T) {
	lib := NewLibrary()
	lib.MustRegister("ok", []string{"backend", "chunk_index"}, func(set params.Set) (plan.Task, error) {
		if _, err := set.Int("chunk_index"); err != nil {
			return plan.Task{}, err
		}
		return plan.Task{Interpreter: plan.InterpreterShell, Body: "true"}, nil
	})
	lib.MustRegister("undeclared", nil, func(set params.Set) (plan.Task, error) {
		img, err := set.String("image")
		return plan.Task{Body: img}, err
	})
	lib.MustRegister("empty", nil, func(params.Set) (plan.Task, error) {
		return plan.Task{Interpreter: plan.InterpreterCommand}, nil
	})

	err := lib.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fragment library validation failed:")
	assert.Contains(t, err.Error(), `fragment "undeclared"`)
	assert.Contains(t, err.Error(), `fragment "empty": command task renders an empty body`)
	assert.NotContains(t, err.Error(), `fragment "ok"`)
}

func tmpl(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseTemplate([]byte(src), "fragments.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func TestRegisterDefinition_DiscoversPlaceholders(t *testing.T) {
	lib := NewLibrary()
	err := lib.RegisterDefinition(&config.FragmentDefinition{
		Name:        "start-functional-deps",
		Description: tmpl(t, "Start docker dependencies for ${upper(param.backend)}"),
		Requires:    []string{"image"},
		Body:        tmpl(t, "docker-compose run start_dependencies_functional_${param.backend}"),
		Environment: map[string]hcl.Expression{
			"CHUNK": tmpl(t, "${param.chunk_index}"),
		},
		Source: "fragments.hcl",
	})
	require.NoError(t, err)

	f, err := lib.Get("start-functional-deps")
	require.NoError(t, err)
	assert.Equal(t, []string{"image", "backend", "chunk_index"}, f.Required())
	assert.Equal(t, "fragments.hcl", f.Source())

	task, err := f.Render(params.NewSet(map[string]params.Value{
		"image":       params.String("php"),
		"backend":     params.BackendValue(params.BackendMSSQL),
		"chunk_index": params.Int(7),
	}))
	require.NoError(t, err)
	assert.Equal(t, plan.Task{
		Description: "Start docker dependencies for MSSQL2017CU9",
		Interpreter: plan.InterpreterShell,
		Body:        "docker-compose run start_dependencies_functional_mssql2017cu9",
		Environment: map[string]string{"CHUNK": "7"},
	}, task)

	require.NoError(t, lib.Validate(context.Background()))
}

func TestRegisterDefinition_Rejects(t *testing.T) {
	cases := map[string]struct {
		def  *config.FragmentDefinition
		want string
	}{
		"unknown interpreter": {
			def:  &config.FragmentDefinition{Name: "x", Interpreter: "powershell", Body: tmpl(t, "x")},
			want: `unknown interpreter "powershell"`,
		},
		"missing body": {
			def:  &config.FragmentDefinition{Name: "x"},
			want: "a shell fragment needs a body",
		},
		"unknown function": {
			def:  &config.FragmentDefinition{Name: "x", Body: tmpl(t, "${exec(param.a)}")},
			want: `call to unknown function "exec"`,
		},
		"foreign reference": {
			def:  &config.FragmentDefinition{Name: "x", Body: tmpl(t, "${local.a}")},
			want: "templates may only reference param.<name>, found local.a",
		},
		"no name": {
			def:  &config.FragmentDefinition{Body: tmpl(t, "x")},
			want: "fragment name must not be empty",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := NewLibrary().RegisterDefinition(tc.def)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestRegisterDefinitions_Aggregates(t *testing.T) {
	lib := NewLibrary()
	lib.MustRegister("taken", nil, echo("x"))
	err := lib.RegisterDefinitions([]*config.FragmentDefinition{
		{Name: "taken", Body: tmpl(t, "x"), Source: "a.hcl"},
		{Name: "ok", Body: tmpl(t, "x"), Source: "a.hcl"},
		{Name: "bad", Interpreter: "nope", Source: "b.hcl"},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "loading fragments failed:")
	assert.ErrorContains(t, err, "already registered")
	assert.ErrorContains(t, err, `b.hcl: fragment "bad"`)
	assert.True(t, lib.Has("ok"))
}

func TestRegisterDefinition_CheckoutNeedsNoBody(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.RegisterDefinition(&config.FragmentDefinition{Name: "checkout-docs", Interpreter: "vcs-checkout"}))
	f, _ := lib.Get("checkout-docs")
	task, err := f.Render(params.Set{})
	require.NoError(t, err)
	assert.Equal(t, plan.Task{Description: "checkout-docs", Interpreter: plan.InterpreterCheckout}, task)
}

func TestProbeSet(t *testing.T) {
	set := ProbeSet("backend", "chunk_index", "image")
	b, err := set.Backend("backend")
	require.NoError(t, err)
	assert.Equal(t, params.BackendMariaDB10, b)
	n, err := set.Int("chunk_index")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	s, _ := set.String("image")
	assert.Equal(t, "image", s)
}

func TestLibrary_LogsThroughGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	lib := NewLibrary(WithLogger(logger))
	require.NoError(t, lib.Register("lint-php", []string{"image"}, echo("lint")))
	assert.Contains(t, buf.String(), `msg="Registering fragment." name=lint-php`)

	quiet := NewLibrary()
	require.NoError(t, quiet.Register("lint-php", nil, echo("lint")))
	assert.True(t, quiet.Has("lint-php"))
}
