// Package composer registers the PHP dependency management fragments.
package composer

import (
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/modules/internal/dockerrun"
)

// RootVersionVariable is the plan variable holding the version composer
// assumes for the root package.
const RootVersionVariable = "composer_root_version"

// Module implements the fragment.Module interface for this package.
type Module struct{}

func run(description string, commands ...string) fragment.TemplateFunc {
	return func(set params.Set) (plan.Task, error) {
		image, err := dockerrun.Image(set)
		if err != nil {
			return plan.Task{}, err
		}
		w := dockerrun.Wrapper{
			Func:    "composer",
			Image:   image,
			Env:     []string{"COMPOSER_ROOT_VERSION=${COMPOSER_ROOT_VERSION}"},
			Home:    true,
			Command: "composer",
		}
		body := w.Script(commands[0])
		for _, c := range commands[1:] {
			body += "\n" + c
		}
		return plan.Task{
			Description: description,
			Interpreter: plan.InterpreterShell,
			Body:        body,
			Environment: map[string]string{"COMPOSER_ROOT_VERSION": "${bamboo." + RootVersionVariable + "}"},
		}, nil
	}
}

// Register registers the fragments with the library.
func (m *Module) Register(lib *fragment.Library) {
	required := []string{dockerrun.ImageKey}
	lib.MustRegister("composer-install", required,
		run("composer install", "composer install --no-progress --no-suggest --no-interaction"))
	lib.MustRegister("composer-update-max", required,
		run("composer update --with-dependencies", "composer install -n", "composer update --with-dependencies --no-progress -n"))
	lib.MustRegister("composer-update-min", required,
		run("composer update --prefer-lowest", "composer install -n", "composer update --prefer-lowest --no-progress -n"))
	lib.MustRegister("composer-validate", required,
		run("composer validate", "composer validate"))
}
