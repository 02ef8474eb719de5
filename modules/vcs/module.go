// Package vcs registers the repository checkout fragments.
package vcs

import (
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/modules/internal/dockerrun"
)

// GerritProjectVariable is the plan variable naming the review project
// changes are cherry-picked from. Policies set it.
const GerritProjectVariable = "gerrit_project"

// Module implements the fragment.Module interface for this package.
type Module struct{}

// Checkout checks out the plan's default repository.
func Checkout(params.Set) (plan.Task, error) {
	return plan.Task{
		Description: "Checkout git core",
		Interpreter: plan.InterpreterCheckout,
	}, nil
}

// GerritCherryPick applies the change under review on top of the checkout.
// The review project comes from a plan variable, so the same fragment serves
// open and restricted plans.
func GerritCherryPick(params.Set) (plan.Task, error) {
	return plan.Task{
		Description: "Gerrit cherry pick",
		Interpreter: plan.InterpreterShell,
		Body: dockerrun.Script(
			"CHANGEURL=${bamboo.changeUrl}",
			"CHANGEURLID=${CHANGEURL#https://review.typo3.org/}",
			"PATCHSET=${bamboo.patchset}",
			"",
			"if [[ $CHANGEURL ]]; then",
			"    gerrit-cherry-pick https://review.typo3.org/${bamboo."+GerritProjectVariable+"} $CHANGEURLID/$PATCHSET || exit 1",
			"fi",
			"",
		),
	}, nil
}

// BuildLabels is a no-op task whose job exists to label builds with the
// change and patch set under review.
func BuildLabels(params.Set) (plan.Task, error) {
	return plan.Task{
		Description: "Create build labels",
		Interpreter: plan.InterpreterShell,
		Body:        "echo \"I'm just here for the labels!\"",
	}, nil
}

// Register registers the fragments with the library.
func (m *Module) Register(lib *fragment.Library) {
	lib.MustRegister("checkout", nil, Checkout)
	lib.MustRegister("gerrit-cherry-pick", nil, GerritCherryPick)
	lib.MustRegister("build-labels", nil, BuildLabels)
}
