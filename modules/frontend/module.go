// Package frontend registers the JavaScript and stylesheet fragments.
package frontend

import (
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/modules/internal/dockerrun"
)

// Module implements the fragment.Module interface for this package.
type Module struct{}

func yarn(image string) dockerrun.Wrapper {
	return dockerrun.Wrapper{Func: "yarn", Image: image, Home: true, Dir: "${PWD}/Build", Command: "yarn"}
}

func grunt(image string) dockerrun.Wrapper {
	return dockerrun.Wrapper{Func: "grunt", Image: image, Home: true, Dir: "${PWD}/Build", Command: "./node_modules/grunt/bin/grunt"}
}

// YarnInstall installs the node dependencies of the Build/ directory.
func YarnInstall(set params.Set) (plan.Task, error) {
	image, err := dockerrun.Image(set)
	if err != nil {
		return plan.Task{}, err
	}
	return plan.Task{
		Description: "yarn install in Build/ dir",
		Interpreter: plan.InterpreterShell,
		Body:        yarn(image).Script("yarn install"),
	}, nil
}

// JSUnit runs the karma suite once in a headless browser.
func JSUnit(set params.Set) (plan.Task, error) {
	image, err := dockerrun.Image(set)
	if err != nil {
		return plan.Task{}, err
	}
	w := dockerrun.Wrapper{Func: "karma", Image: image, Home: true, Command: "./Build/node_modules/karma/bin/karma"}
	return plan.Task{
		Description: "Run tests",
		Interpreter: plan.InterpreterShell,
		Body:        w.Script("karma start " + dockerrun.TestingFrameworkBuildPath + "Configuration/JSUnit/karma.conf.ci.js --single-run"),
	}, nil
}

// LintScssTs lints and rebuilds css and js, then fails if the build changed
// any committed file.
func LintScssTs(set params.Set) (plan.Task, error) {
	image, err := dockerrun.Image(set)
	if err != nil {
		return plan.Task{}, err
	}
	body := dockerrun.Header +
		grunt(image).Define() + "\n" +
		"grunt lint || exit 1\n" +
		"grunt build || exit 1\n" +
		"git add *\n" +
		"git status\n" +
		"git status | grep -q \"nothing to commit, working tree clean\""
	return plan.Task{
		Description: "Lint scss and ts, build css and js, test git is clean",
		Interpreter: plan.InterpreterShell,
		Body:        body,
	}, nil
}

// Register registers the fragments with the library.
func (m *Module) Register(lib *fragment.Library) {
	required := []string{dockerrun.ImageKey}
	lib.MustRegister("yarn-install", required, YarnInstall)
	lib.MustRegister("run-js-unit", required, JSUnit)
	lib.MustRegister("lint-scss-ts", required, LintScssTs)
}
