// Package phpunit registers fragments that split and run the PHP test
// suites: phpunit unit and functional tests and codeception acceptance tests.
package phpunit

import (
	"fmt"

	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/modules/internal/dockerrun"
)

// JUnitReport is where phpunit writes its results.
const JUnitReport = "test-reports/phpunit.xml"

const codeceptionConfig = "typo3/sysext/core/Tests/codeception.yml"

// Module implements the fragment.Module interface for this package.
type Module struct{}

func split(suite string) fragment.TemplateFunc {
	fn := "split" + suite + "Tests"
	return func(set params.Set) (plan.Task, error) {
		image, err := dockerrun.Image(set)
		if err != nil {
			return plan.Task{}, err
		}
		count, err := set.Int(params.ChunkCountKey)
		if err != nil {
			return plan.Task{}, err
		}
		w := dockerrun.Wrapper{
			Func:    fn,
			Image:   image,
			Command: "./" + dockerrun.TestingFrameworkBuildPath + "Scripts/" + fn + ".php",
		}
		return plan.Task{
			Description: "Create list of test files to execute per job",
			Interpreter: plan.InterpreterShell,
			Body:        w.Script(fmt.Sprintf("%s %d -v", fn, count)),
		}, nil
	}
}

func unit(description, config, extra string) fragment.TemplateFunc {
	return func(set params.Set) (plan.Task, error) {
		image, err := dockerrun.Image(set)
		if err != nil {
			return plan.Task{}, err
		}
		w := dockerrun.Wrapper{
			Func:    "phpunit",
			Image:   image,
			Network: true,
			Command: dockerrun.NoXdebugPHP + " bin/phpunit",
		}
		return plan.Task{
			Description: description,
			Interpreter: plan.InterpreterShell,
			Body:        w.Script("phpunit --log-junit " + JUnitReport + " -c " + dockerrun.TestingFrameworkBuildPath + config + extra),
		}, nil
	}
}

// excludeGroup is the phpunit group each backend skips.
func excludeGroup(b params.Backend) string {
	switch b {
	case params.BackendPostgres10:
		return "not-postgres"
	case params.BackendMSSQL:
		return "not-mssql"
	case params.BackendSQLite:
		return "not-sqlite"
	}
	return ""
}

// Functional runs one chunk of the functional suite against the backend.
func Functional(set params.Set) (plan.Task, error) {
	image, err := dockerrun.Image(set)
	if err != nil {
		return plan.Task{}, err
	}
	backend, err := set.Backend(params.BackendKey)
	if err != nil {
		return plan.Task{}, err
	}
	index, err := set.Int(params.ChunkIndexKey)
	if err != nil {
		return plan.Task{}, err
	}
	label, err := set.String(params.ChunkLabelKey)
	if err != nil {
		return plan.Task{}, err
	}

	w := dockerrun.Wrapper{
		Func:    "phpunit",
		Image:   image,
		Env:     append(dockerrun.DatabaseEnv(backend), dockerrun.CacheEnv()...),
		Network: true,
		Command: dockerrun.NoXdebugPHP + " bin/phpunit",
	}
	invocation := "phpunit"
	if group := excludeGroup(backend); group != "" {
		invocation += " --exclude-group " + group
	}
	invocation += fmt.Sprintf(" --log-junit %s -c %sFunctionalTests-Job-%d.xml", JUnitReport, dockerrun.TestingFrameworkBuildPath, index)

	return plan.Task{
		Description: "Run phpunit with functional chunk " + label,
		Interpreter: plan.InterpreterShell,
		Body:        w.Script(invocation),
	}, nil
}

func codecept(image string, env []string) dockerrun.Wrapper {
	return dockerrun.Wrapper{
		Func:    "codecept",
		Image:   image,
		Env:     env,
		Network: true,
		Command: "./bin/codecept",
	}
}

// AcceptanceBackend runs one chunk of the backend acceptance suite.
func AcceptanceBackend(set params.Set) (plan.Task, error) {
	image, err := dockerrun.Image(set)
	if err != nil {
		return plan.Task{}, err
	}
	backend, err := set.Backend(params.BackendKey)
	if err != nil {
		return plan.Task{}, err
	}
	index, err := set.Int(params.ChunkIndexKey)
	if err != nil {
		return plan.Task{}, err
	}
	label, err := set.String(params.ChunkLabelKey)
	if err != nil {
		return plan.Task{}, err
	}

	w := codecept(image, dockerrun.DatabaseEnv(backend))
	return plan.Task{
		Description: "Execute codeception acceptance suite group " + label,
		Interpreter: plan.InterpreterShell,
		Body: w.Script(fmt.Sprintf("codecept run Backend -d -g AcceptanceTests-Job-%d -c %s --xml reports.xml --html reports.html\n",
			index, codeceptionConfig)),
	}, nil
}

// installEnv returns the codeception environment name and the install
// credentials forwarded from the agent for backend.
func installEnv(b params.Backend) (string, []string, error) {
	forward := func(prefix string) []string {
		var env []string
		for _, k := range []string{"Host", "Name", "Username", "Password"} {
			name := prefix + k
			env = append(env, name+"=${"+name+"}")
		}
		return env
	}
	switch b {
	case params.BackendMariaDB10:
		return "mysql", forward("typo3InstallMysqlDatabase"), nil
	case params.BackendPostgres10:
		return "postgresql", forward("typo3InstallPostgresqlDatabase"), nil
	case params.BackendSQLite:
		return "sqlite", nil, nil
	}
	return "", nil, fmt.Errorf("the install suite has no environment for backend %s", b)
}

// AcceptanceInstall installs the system on the backend through the web installer.
func AcceptanceInstall(set params.Set) (plan.Task, error) {
	image, err := dockerrun.Image(set)
	if err != nil {
		return plan.Task{}, err
	}
	backend, err := set.Backend(params.BackendKey)
	if err != nil {
		return plan.Task{}, err
	}
	env, forwarded, err := installEnv(backend)
	if err != nil {
		return plan.Task{}, err
	}

	w := codecept(image, forwarded)
	return plan.Task{
		Description: "Install TYPO3 on " + backend.Family(),
		Interpreter: plan.InterpreterShell,
		Body: w.Script(fmt.Sprintf("codecept run Install -d -c %s --env=%s --xml reports.xml --html reports.html\n",
			codeceptionConfig, env)),
	}, nil
}

// Register registers the fragments with the library.
func (m *Module) Register(lib *fragment.Library) {
	image := dockerrun.ImageKey
	lib.MustRegister("split-functional", []string{image, params.ChunkCountKey}, split("Functional"))
	lib.MustRegister("split-acceptance", []string{image, params.ChunkCountKey}, split("Acceptance"))
	lib.MustRegister("run-phpunit", []string{image}, unit("Run phpunit", "UnitTests.xml", ""))
	lib.MustRegister("run-phpunit-random", []string{image}, unit("Run phpunit random order", "UnitTests.xml", " --order-by=random"))
	lib.MustRegister("run-phpunit-deprecated", []string{image}, unit("Run phpunit", "UnitTestsDeprecated.xml", ""))
	lib.MustRegister("run-phpunit-functional", []string{image, params.BackendKey, params.ChunkIndexKey, params.ChunkLabelKey}, Functional)
	lib.MustRegister("run-codeception-backend", []string{image, params.BackendKey, params.ChunkIndexKey, params.ChunkLabelKey}, AcceptanceBackend)
	lib.MustRegister("run-codeception-install", []string{image, params.BackendKey}, AcceptanceInstall)
}
