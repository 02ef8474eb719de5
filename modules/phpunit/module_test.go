package phpunit

import (
	"testing"

	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/params"
	"github.com/specialistvlad/burstplan/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, name string, set params.Set) plan.Task {
	t.Helper()
	lib := fragment.NewLibrary()
	(&Module{}).Register(lib)
	f, err := lib.Get(name)
	require.NoError(t, err)
	task, err := f.Render(set)
	require.NoError(t, err)
	return task
}

func shardSet(backend params.Backend, index int, label string) params.Set {
	return params.NewSet(map[string]params.Value{
		"image":       params.String("typo3gmbh/php74"),
		"backend":     params.BackendValue(backend),
		params.ChunkIndexKey: params.Int(index),
		params.ChunkLabelKey: params.String(label),
		params.ChunkCountKey: params.Int(10),
	})
}

func TestFunctional_PerBackend(t *testing.T) {
	task := render(t, "run-phpunit-functional", shardSet(params.BackendPostgres10, 3, "03"))
	assert.Equal(t, "Run phpunit with functional chunk 03", task.Description)
	assert.Contains(t, task.Body, "-e typo3DatabaseDriver=pdo_pgsql \\\n")
	assert.Contains(t, task.Body, "typo3gmbh/php74:latest")
	assert.Contains(t, task.Body, "phpunit --exclude-group not-postgres --log-junit test-reports/phpunit.xml -c vendor/typo3/testing-framework/Resources/Core/Build/FunctionalTests-Job-3.xml")

	task = render(t, "run-phpunit-functional", shardSet(params.BackendMariaDB10, 1, "01"))
	assert.NotContains(t, task.Body, "--exclude-group")
	assert.Contains(t, task.Body, "-e typo3DatabaseHost=mariadb10 \\\n")
}

func TestSplit_UsesChunkCount(t *testing.T) {
	task := render(t, "split-functional", shardSet(params.BackendSQLite, 1, "01"))
	assert.Contains(t, task.Body, "Scripts/splitFunctionalTests.php $*")
	assert.Contains(t, task.Body, "\nsplitFunctionalTests 10 -v")
}

func TestUnit_Variants(t *testing.T) {
	set := params.NewSet(map[string]params.Value{"image": params.String("typo3gmbh/php72")})
	assert.Contains(t, render(t, "run-phpunit", set).Body, "-c vendor/typo3/testing-framework/Resources/Core/Build/UnitTests.xml")
	assert.Contains(t, render(t, "run-phpunit-random", set).Body, "UnitTests.xml --order-by=random")
	assert.Contains(t, render(t, "run-phpunit-deprecated", set).Body, "UnitTestsDeprecated.xml")
}

func TestAcceptance(t *testing.T) {
	task := render(t, "run-codeception-backend", shardSet(params.BackendMariaDB10, 7, "07"))
	assert.Equal(t, "Execute codeception acceptance suite group 07", task.Description)
	assert.Contains(t, task.Body, "codecept run Backend -d -g AcceptanceTests-Job-7 -c typo3/sysext/core/Tests/codeception.yml")

	task = render(t, "run-codeception-install", shardSet(params.BackendPostgres10, 1, "1"))
	assert.Equal(t, "Install TYPO3 on pgsql", task.Description)
	assert.Contains(t, task.Body, "--env=postgresql")
	assert.Contains(t, task.Body, "-e typo3InstallPostgresqlDatabaseHost=${typo3InstallPostgresqlDatabaseHost} \\\n")

	lib := fragment.NewLibrary()
	(&Module{}).Register(lib)
	f, _ := lib.Get("run-codeception-install")
	_, err := f.Render(shardSet(params.BackendMSSQL, 1, "1"))
	assert.ErrorContains(t, err, "no environment for backend mssql2017cu9")
}
