// Package quality registers the linting and code integrity fragments.
package quality

import (
	"strings"

	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/specialistvlad/burstplan/modules/internal/dockerrun"
)

// Module implements the fragment.Module interface for this package.
type Module struct{}

// tool wraps a single containerized command and invokes it once.
func tool(description, fn, command, invocation string, home bool) fragment.TemplateFunc {
	return func(set params.Set) (plan.Task, error) {
		image, err := dockerrun.Image(set)
		if err != nil {
			return plan.Task{}, err
		}
		w := dockerrun.Wrapper{Func: fn, Image: image, Home: home, Command: command}
		return plan.Task{
			Description: description,
			Interpreter: plan.InterpreterShell,
			Body:        w.Script(invocation),
		}, nil
	}
}

// Various runs the repository integrity checks in one script: duplicate
// exception codes, submodules, permissions, xlf, rst, path length, csv
// fixtures, BOMs and composer.json integrity.
func Various(set params.Set) (plan.Task, error) {
	image, err := dockerrun.Image(set)
	if err != nil {
		return plan.Task{}, err
	}

	var body strings.Builder
	body.WriteString(dockerrun.Header)
	for _, w := range []dockerrun.Wrapper{
		{Func: "validateRstFiles", Image: image, Command: "./Build/Scripts/validateRstFiles.php"},
		{Func: "extensionScannerRstFileReferences", Image: image, Command: "./Build/Scripts/extensionScannerRstFileReferences.php"},
		{Func: "checkIntegrityCsvFixtures", Image: image, Command: "./Build/Scripts/checkIntegrityCsvFixtures.php"},
		{Func: "checkIntegrityBom", Image: image, Command: "./Build/Scripts/checkUtf8Bom.sh"},
		{Func: "checkIntegrityComposer", Image: image, Command: "./Build/Scripts/checkIntegrityComposer.php"},
	} {
		body.WriteString(w.Define())
		body.WriteString("\n")
	}
	body.WriteString(strings.Join([]string{
		"./Build/Scripts/duplicateExceptionCodeCheck.sh || exit 1",
		"if [[ `git submodule status 2>&1 | wc -l` -ne 0 ]]; then",
		"    echo \"Found a submodule definition in repository\";",
		"    exit 99;",
		"fi",
		"./Build/Scripts/checkFilePermissions.sh || exit 1",
		"./Build/Scripts/xlfcheck.sh || exit 1",
		"validateRstFiles || exit 1",
		"./Build/Scripts/maxFilePathLength.sh || exit 1",
		"extensionScannerRstFileReferences || exit 1",
		"checkIntegrityCsvFixtures || exit 1",
		"checkIntegrityBom || exit 1",
		"checkIntegrityComposer",
	}, "\n"))

	return plan.Task{
		Description: "Check duplicate exceptions, git submodules, xlf files, permissions, rst",
		Interpreter: plan.InterpreterShell,
		Body:        body.String(),
	}, nil
}

// Register registers the fragments with the library.
func (m *Module) Register(lib *fragment.Library) {
	required := []string{dockerrun.ImageKey}
	lib.MustRegister("lint-php", required, tool("Run php lint", "runLint",
		`find . -name \*.php -print0 | xargs -0 -n1 -P2 `+dockerrun.NoXdebugPHP+` -l >/dev/null`, "runLint", true))
	lib.MustRegister("cgl-commit", required, tool("Execute cgl check script", "cglFixMyCommit",
		"./Build/Scripts/cglFixMyCommit.sh", "cglFixMyCommit dryrun\n", false))
	lib.MustRegister("cgl-full", required, tool("Execute cgl check", "phpCsFixer",
		dockerrun.NoXdebugPHP+" bin/php-cs-fixer",
		"phpCsFixer fix -v --dry-run --path-mode intersection --config=Build/.php_cs typo3/\nexit $?", false))
	lib.MustRegister("check-annotations", required, tool("Execute annotations check script", "annotationChecker",
		"./Build/Scripts/annotationChecker.php", "annotationChecker", false))
	lib.MustRegister("check-docblocks", required, tool("Execute doc block check script", "docBlockChecker",
		"./Build/Scripts/docBlockChecker.php", "docBlockChecker", false))
	lib.MustRegister("check-various", required, Various)
}
