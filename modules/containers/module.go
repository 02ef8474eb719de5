// Package containers registers fragments that manage the sibling
// containers (databases, caches, browsers) tests talk to.
package containers

import (
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/modules/internal/dockerrun"
)

// CleanupName is the fragment the composer prepends to every job.
const CleanupName = "cleanup-containers"

// Module implements the fragment.Module interface for this package.
type Module struct{}

// Cleanup removes containers a previous, aborted build may have left behind.
// It never fails the job.
func Cleanup(params.Set) (plan.Task, error) {
	return plan.Task{
		Description: "Stop dangling containers",
		Interpreter: plan.InterpreterShell,
		Body: dockerrun.Script(
			"cd "+dockerrun.ComposeDir,
			"docker-compose down -v",
			"docker rm -f ${BAMBOO_COMPOSE_PROJECT_NAME}sib_adhoc",
			"exit 0",
			"",
		),
	}, nil
}

// Stop tears down the siblings a job started.
func Stop(params.Set) (plan.Task, error) {
	return plan.Task{
		Description: "Stop docker siblings",
		Interpreter: plan.InterpreterShell,
		Body: dockerrun.Script(
			"cd "+dockerrun.ComposeDir,
			"docker-compose down -v",
		),
	}, nil
}

// PrepareAcceptance creates the directory acceptance reports are written to.
func PrepareAcceptance(params.Set) (plan.Task, error) {
	return plan.Task{
		Description: "Prepare acceptance test environment",
		Interpreter: plan.InterpreterShell,
		Body:        dockerrun.Script("mkdir -p typo3temp/var/tests/", ""),
	}, nil
}

func start(suite, what string) fragment.TemplateFunc {
	return func(set params.Set) (plan.Task, error) {
		backend, err := set.Backend(params.BackendKey)
		if err != nil {
			return plan.Task{}, err
		}
		return plan.Task{
			Description: "Start docker siblings for " + what + " " + backend.Family(),
			Interpreter: plan.InterpreterShell,
			Body:        dockerrun.StartDependencies(dockerrun.ComposeService(suite, backend)),
		}, nil
	}
}

// Register registers the fragments with the library.
func (m *Module) Register(lib *fragment.Library) {
	lib.MustRegister(CleanupName, nil, Cleanup)
	lib.MustRegister("stop-docker-deps", nil, Stop)
	lib.MustRegister("prepare-acceptance", nil, PrepareAcceptance)
	lib.MustRegister("start-functional-deps", []string{params.BackendKey}, start("functional", "functional tests on"))
	lib.MustRegister("start-acceptance-deps", []string{params.BackendKey}, start("acceptance_backend", "acceptance test backend"))
	lib.MustRegister("start-acceptance-install-deps", []string{params.BackendKey}, start("acceptance_install", "acceptance test install"))
}
