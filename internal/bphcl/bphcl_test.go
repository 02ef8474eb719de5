package bphcl

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFindUniqueBlock(t *testing.T) {
	src := []byte(`
locals { a = 1 }
stage "one" {}
locals { b = 2 }
`)
	file, diags := hclsyntax.ParseConfig(src, "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	content, diags := file.Body.Content(&hcl.BodySchema{Blocks: []hcl.BlockHeaderSchema{
		{Type: "locals"}, {Type: "stage", LabelNames: []string{"name"}},
	}})
	require.False(t, diags.HasErrors(), diags.Error())

	block, diags := FindUniqueBlock(content.Blocks, "stage")
	require.NotNil(t, block)
	assert.False(t, diags.HasErrors())

	block, diags = FindUniqueBlock(content.Blocks, "locals")
	require.NotNil(t, block)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Error(), `Duplicate "locals" block`)

	block, diags = FindUniqueBlock(content.Blocks, "missing")
	assert.Nil(t, block)
	assert.Empty(t, diags)
}

func TestAttributeAfterRoot(t *testing.T) {
	for src, want := range map[string]string{
		`param.backend`:        "backend",
		`param["chunk_index"]`: "chunk_index",
		`param.image.tag`:      "image",
	} {
		expr, diags := hclsyntax.ParseExpression([]byte(src), "t.hcl", hcl.Pos{Line: 1, Column: 1})
		require.False(t, diags.HasErrors())
		vars := expr.Variables()
		require.Len(t, vars, 1)
		got, ok := AttributeAfterRoot(vars[0], "param")
		require.True(t, ok, src)
		assert.Equal(t, want, got)
	}

	expr, _ := hclsyntax.ParseExpression([]byte(`local.php`), "t.hcl", hcl.Pos{Line: 1, Column: 1})
	_, ok := AttributeAfterRoot(expr.Variables()[0], "param")
	assert.False(t, ok)
}

func TestNativeRoundTrip(t *testing.T) {
	in := map[string]any{
		"custom": map[string]any{
			"enabled":  "true",
			"duration": 30,
			"ratio":    0.5,
			"labels":   []any{"a", "b"},
			"strict":   false,
		},
		"repositoryDefiningWorkingDirectory": -1,
	}

	val, err := NativeToCty(in)
	require.NoError(t, err)
	require.True(t, val.Type().IsObjectType())

	out, err := CtyToNative(val)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCtyToNative_Null(t *testing.T) {
	out, err := CtyToNative(cty.NullVal(cty.String))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestIsExprDefined(t *testing.T) {
	expr, _ := hclsyntax.ParseExpression([]byte(`"x"`), "t.hcl", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	assert.True(t, IsExprDefined(expr))
	assert.False(t, IsExprDefined(nil))
}
