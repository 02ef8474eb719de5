package composer

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

func TestRegister_Bodies(t *testing.T) {
	set := params.NewSet(map[string]params.Value{"image": params.String("typo3gmbh/PHP72")})
	tests := []struct {
		name        string
		description string
		invocation  string
	}{
		{"composer-install", "composer install", "\ncomposer install --no-progress --no-suggest --no-interaction"},
		{"composer-update-max", "composer update --with-dependencies", "\ncomposer install -n\ncomposer update --with-dependencies --no-progress -n"},
		{"composer-update-min", "composer update --prefer-lowest", "\ncomposer install -n\ncomposer update --prefer-lowest --no-progress -n"},
		{"composer-validate", "composer validate", "\ncomposer validate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := library().Get(tt.name)
			require.NoError(t, err)
			task, err := f.Render(set)
			require.NoError(t, err)

			assert.Equal(t, tt.description, task.Description)
			assert.Equal(t, plan.InterpreterShell, task.Interpreter)
			assert.Contains(t, task.Body, "function composer() {\n")
			assert.Contains(t, task.Body, "-e COMPOSER_ROOT_VERSION=${COMPOSER_ROOT_VERSION} \\\n")
			assert.Contains(t, task.Body, "        typo3gmbh/php72:latest \\\n")
			assert.True(t, strings.HasSuffix(task.Body, "}\n"+tt.invocation), task.Body)
			assert.Equal(t, map[string]string{"COMPOSER_ROOT_VERSION": "${bamboo.composer_root_version}"}, task.Environment)
		})
	}
}

func TestRegister_RequiresImage(t *testing.T) {
	for _, name := range []string{"composer-install", "composer-update-max", "composer-update-min", "composer-validate"} {
		f, err := library().Get(name)
		require.NoError(t, err)
		assert.Equal(t, []string{"image"}, f.Required(), name)

		_, err = f.Render(params.Set{})
		assert.ErrorIs(t, err, params.ErrMissingRequiredParameter, name)
	}
}
