package quality

import (
	"strings"
	"testing"

	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library() *fragment.Library {
	lib := fragment.NewLibrary()
	(&Module{}).Register(lib)
	return lib
}

func TestRegister_Tools(t *testing.T) {
	set := params.NewSet(map[string]params.Value{"image": params.String("typo3gmbh/php73")})
	tests := []struct {
		name        string
		description string
		function    string
		suffix      string
	}{
		{"lint-php", "Run php lint", "runLint", "\nrunLint"},
		{"cgl-commit", "Execute cgl check script", "cglFixMyCommit", "\ncglFixMyCommit dryrun\n"},
		{"cgl-full", "Execute cgl check", "phpCsFixer", "--config=Build/.php_cs typo3/\nexit $?"},
		{"check-annotations", "Execute annotations check script", "annotationChecker", "\nannotationChecker"},
		{"check-docblocks", "Execute doc block check script", "docBlockChecker", "\ndocBlockChecker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := library().Get(tt.name)
			require.NoError(t, err)
			task, err := f.Render(set)
			require.NoError(t, err)

			assert.Equal(t, tt.description, task.Description)
			assert.Equal(t, plan.InterpreterShell, task.Interpreter)
			assert.Contains(t, task.Body, "function "+tt.function+"() {\n")
			assert.Contains(t, task.Body, "        typo3gmbh/php73:latest \\\n")
			assert.True(t, strings.HasSuffix(task.Body, tt.suffix), task.Body)
		})
	}
}

func TestLintPHP_RunsWithoutXdebug(t *testing.T) {
	f, err := library().Get("lint-php")
	require.NoError(t, err)
	task, err := f.Render(params.NewSet(map[string]params.Value{"image": params.String("typo3gmbh/php73")}))
	require.NoError(t, err)
	assert.Contains(t, task.Body, `xargs -0 -n1 -P2 php -n -c /etc/php/cli-no-xdebug/php.ini -l >/dev/null`)
	assert.Contains(t, task.Body, "-e HOME=${HOME} \\\n")
}

func TestVarious(t *testing.T) {
	task, err := Various(params.NewSet(map[string]params.Value{"image": params.String("typo3gmbh/php73")}))
	require.NoError(t, err)
	assert.Equal(t, "Check duplicate exceptions, git submodules, xlf files, permissions, rst", task.Description)
	for _, fn := range []string{"validateRstFiles", "extensionScannerRstFileReferences", "checkIntegrityCsvFixtures", "checkIntegrityBom", "checkIntegrityComposer"} {
		assert.Contains(t, task.Body, "function "+fn+"() {\n")
	}
	assert.Contains(t, task.Body, "./Build/Scripts/duplicateExceptionCodeCheck.sh || exit 1\n")
	assert.Contains(t, task.Body, "    exit 99;\n")
	assert.True(t, strings.HasSuffix(task.Body, "checkIntegrityBom || exit 1\ncheckIntegrityComposer"))
}

func TestRegister_RequiresImage(t *testing.T) {
	for _, name := range []string{"lint-php", "cgl-commit", "cgl-full", "check-annotations", "check-docblocks", "check-various"} {
		f, err := library().Get(name)
		require.NoError(t, err)
		_, err = f.Render(params.Set{})
		assert.ErrorIs(t, err, params.ErrMissingRequiredParameter, name)
	}

	_, err := Various(params.NewSet(map[string]params.Value{"image": params.String("")}))
	assert.ErrorContains(t, err, "must not be empty")
}
