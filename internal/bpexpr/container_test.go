package bpexpr_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/burstplan/internal/bpexpr"
	"github.com/specialistvlad/burstplan/internal/bphcl"
	"github.com/stretchr/testify/require"
)

// parseExpr is a test helper to quickly get an hcl.Expression from a string.
func parseExpr(t *testing.T, exprStr string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(exprStr), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return expr
}

// parseTemplate parses src as a quoted-less template, the way fragment bodies are written.
func parseTemplate(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseTemplate([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Template parsing failed: %s", diags.Error())
	return expr
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := bpexpr.NewContainer()
	c.Add(
		parseExpr(t, `upper("hello")`),
		parseExpr(t, `param.image`),
		parseExpr(t, `lower(param.backend)`),
		parseExpr(t, `param.image`),
	)

	require.Equal(t, []string{"lower", "upper"}, c.CalledFunctions())

	refs := c.References()
	require.Len(t, refs, 2)
	require.Equal(t, []string{"param.backend", "param.image"}, []string{
		bphcl.TraversalKey(refs[0]),
		bphcl.TraversalKey(refs[1]),
	})
}

func TestContainer_RootNames(t *testing.T) {
	c := bpexpr.NewContainer()
	c.Add(
		parseTemplate(t, `docker-compose run start_dependencies_functional_${param.backend}`),
		parseTemplate(t, `FunctionalTests-Job-${param.chunk_index}.xml ${upper(local.suffix)}`),
		parseExpr(t, `param["chunk_count"]`),
	)

	require.Equal(t, []string{"backend", "chunk_count", "chunk_index"}, c.RootNames("param"))
	require.Equal(t, []string{"suffix"}, c.RootNames("local"))
	require.Equal(t, []string{"upper"}, c.CalledFunctions())
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := bpexpr.NewContainer()
	c.Add(parseExpr(t, `param.first`))
	require.Equal(t, []string{"first"}, c.RootNames("param"))

	c.Add(parseExpr(t, `param.second`), parseExpr(t, `my_func()`))
	require.Equal(t, []string{"my_func"}, c.CalledFunctions())
	require.Equal(t, []string{"first", "second"}, c.RootNames("param"))
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	c := bpexpr.NewContainer()
	c.Add(
		parseExpr(t, `param.a`),
		parseExpr(t, `param.b`),
		parseExpr(t, `func_a()`),
	)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				require.Len(t, c.References(), 2)
			} else {
				require.Len(t, c.CalledFunctions(), 1)
			}
		}()
	}
	wg.Wait()
}

func TestContainer_EdgeCases(t *testing.T) {
	t.Run("Empty Container", func(t *testing.T) {
		c := bpexpr.NewContainer()
		require.Empty(t, c.References())
		require.Empty(t, c.CalledFunctions())
		require.Empty(t, c.RootNames("param"))
	})

	t.Run("Adding Nil Expressions", func(t *testing.T) {
		c := bpexpr.NewContainer()
		c.Add(nil, parseExpr(t, `param.a`), nil)
		require.Equal(t, []string{"a"}, c.RootNames("param"))
	})
}
