// Package reporting registers the result parser fragments jobs run as
// final tasks.
package reporting

import (
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
)

// Result file globs.
const (
	PHPUnitResults    = "test-reports/phpunit.xml"
	AcceptanceResults = "typo3temp/var/tests/AcceptanceReports/reports.xml"
	KarmaResults      = "typo3temp/var/tests/*"
)

// Module implements the fragment.Module interface for this package.
type Module struct{}

func junit(description, glob string) fragment.TemplateFunc {
	return func(params.Set) (plan.Task, error) {
		return plan.Task{
			Description: description,
			Interpreter: plan.InterpreterJUnitParser,
			Body:        glob,
		}, nil
	}
}

// Register registers the fragments with the library.
func (m *Module) Register(lib *fragment.Library) {
	lib.MustRegister("parse-phpunit-junit", nil, junit("Parse phpunit results", PHPUnitResults))
	lib.MustRegister("parse-acceptance-junit", nil, junit("Parse acceptance results", AcceptanceResults))
	lib.MustRegister("parse-karma-junit", nil, junit("Parse karma results", KarmaResults))
}
