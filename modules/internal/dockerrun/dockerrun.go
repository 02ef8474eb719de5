// Package dockerrun builds the bash wrappers that fragment catalogues use
// to run a tool inside the job's PHP container on the agent's docker host.
package dockerrun

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/burstplan/internal/params"
)

// ImageKey is the placeholder naming the container image, without tag.
const ImageKey = "image"

// Header makes inline scripts re-exec themselves under bash and trace commands.
const Header = "#!/bin/bash\n" +
	"\n" +
	"if [ \"$(ps -p \"$$\" -o comm=)\" != \"bash\" ]; then\n" +
	"    bash \"$0\" \"$@\"\n" +
	"    exit \"$?\"\n" +
	"fi\n" +
	"\n" +
	"set -x\n" +
	"\n"

// TestingFrameworkBuildPath is where the testing framework ships its
// phpunit configurations and split scripts.
const TestingFrameworkBuildPath = "vendor/typo3/testing-framework/Resources/Core/Build/"

// ComposeDir holds the docker-compose file for sibling containers.
const ComposeDir = "Build/testing-docker/bamboo"

// NoXdebugPHP runs php without xdebug and with the CLI ini of the image.
const NoXdebugPHP = "php -n -c /etc/php/cli-no-xdebug/php.ini"

// Wrapper describes a shell function that forwards its arguments to a
// command run in a throwaway container.
type Wrapper struct {
	// Func is the shell function name, e.g. "phpunit".
	Func  string
	Image string
	// Env entries are passed as -e flags, in order.
	Env []string
	// Network joins the compose network so sibling services resolve.
	Network bool
	// Home passes the agent's HOME into the container.
	Home bool
	// Dir is the working directory inside the container, ${PWD} if empty.
	Dir     string
	Command string
}

// Define returns the bash function definition.
func (w Wrapper) Define() string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s() {\n", w.Func)
	b.WriteString("    docker run \\\n")
	b.WriteString("        -u ${HOST_UID} \\\n")
	b.WriteString("        -v /bamboo-data/${BAMBOO_COMPOSE_PROJECT_NAME}/passwd:/etc/passwd \\\n")
	b.WriteString("        -v ${BAMBOO_COMPOSE_PROJECT_NAME}_bamboo-data:/srv/bamboo/xml-data/build-dir/ \\\n")
	for _, e := range w.Env {
		fmt.Fprintf(&b, "        -e %s \\\n", e)
	}
	if w.Home {
		b.WriteString("        -e HOME=${HOME} \\\n")
	}
	b.WriteString("        --name ${BAMBOO_COMPOSE_PROJECT_NAME}sib_adhoc \\\n")
	if w.Network {
		b.WriteString("        --network ${BAMBOO_COMPOSE_PROJECT_NAME}_test \\\n")
	}
	b.WriteString("        --rm \\\n")
	fmt.Fprintf(&b, "        %s \\\n", w.Image)
	dir := w.Dir
	if dir == "" {
		dir = "${PWD}"
	}
	fmt.Fprintf(&b, "        bin/bash -c \"cd %s; %s $*\"\n", dir, w.Command)
	b.WriteString("}\n")
	return b.String()
}

// Script returns a complete inline body: header, wrapper and invocation.
func (w Wrapper) Script(invocation string) string {
	return Header + w.Define() + "\n" + invocation
}

// Script returns header plus lines, for bodies that need no container.
func Script(lines ...string) string {
	return Header + strings.Join(lines, "\n")
}

// Image returns the bound image with the latest tag unless one is given.
func Image(set params.Set) (string, error) {
	img, err := set.String(ImageKey)
	if err != nil {
		return "", err
	}
	img = strings.ToLower(strings.TrimSpace(img))
	if img == "" {
		return "", fmt.Errorf("parameter %q must not be empty", ImageKey)
	}
	if i := strings.LastIndex(img, ":"); i > strings.LastIndex(img, "/") {
		return img, nil
	}
	return img + ":latest", nil
}

// ComposeService names the docker-compose service that starts the sibling
// containers a suite needs on backend.
func ComposeService(suite string, backend params.Backend) string {
	name := string(backend)
	if backend == params.BackendMSSQL {
		name = "mssql"
	}
	return "start_dependencies_" + suite + "_" + name
}

// StartDependencies returns the body that brings up a compose service.
func StartDependencies(service string) string {
	return Script(
		"cd "+ComposeDir,
		"echo COMPOSE_PROJECT_NAME=${BAMBOO_COMPOSE_PROJECT_NAME}sib > .env",
		"docker-compose run "+service,
	)
}

// DatabaseEnv returns the -e entries functional and acceptance tests need
// to reach the database sibling for backend.
func DatabaseEnv(backend params.Backend) []string {
	switch backend {
	case params.BackendMariaDB10:
		return []string{
			"typo3DatabaseName=func_test",
			"typo3DatabaseUsername=root",
			"typo3DatabasePassword=funcp",
			"typo3DatabaseHost=mariadb10",
		}
	case params.BackendPostgres10:
		return []string{
			"typo3DatabaseDriver=pdo_pgsql",
			"typo3DatabaseName=bamboo",
			"typo3DatabaseUsername=bamboo",
			"typo3DatabaseHost=postgres10",
			"typo3DatabasePassword=funcp",
		}
	case params.BackendMSSQL:
		return []string{
			"typo3DatabaseDriver=sqlsrv",
			"typo3DatabaseName=func",
			"typo3DatabasePassword=Test1234!",
			"typo3DatabaseUsername=SA",
			"typo3DatabasePort=1433",
			"typo3DatabaseCharset=utf-8",
			"typo3DatabaseHost=mssql2017cu9",
		}
	case params.BackendSQLite:
		return []string{"typo3DatabaseDriver=pdo_sqlite"}
	}
	return nil
}

// CacheEnv points the caching framework tests at the redis and memcached siblings.
func CacheEnv() []string {
	return []string{
		"typo3TestingRedisHost=${BAMBOO_COMPOSE_PROJECT_NAME}sib_redis4_1",
		"typo3TestingMemcachedHost=${BAMBOO_COMPOSE_PROJECT_NAME}sib_memcached1-5_1",
	}
}
