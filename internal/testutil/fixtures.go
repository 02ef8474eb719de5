// Package testutil holds descriptor fixtures and a harness shared by the
// integration tests.
package testutil

// CoreDescriptorHCL is a realistic pre-merge plan: a lint stage followed by
// unit tests and a functional suite sharded across two backends.
const CoreDescriptorHCL = `
locals {
  php = "php74"
}

plan "CORE" "GTC" {
  project_name = "TYPO3 Core"
  name         = "Core 10 pre-merge"
  policy       = "open-core"

  params {
    image = "typo3gmbh/${local.php}:latest"
  }
  variables {
    composer_root_version = "10.0.0"
  }

  stage "Early" {
    job "lint" {
      role      = "lint"
      key       = "L"
      name      = "Lint"
      fragments = ["checkout", "lint-php"]
    }
  }

  stage "Main" {
    depends_on = ["Early"]

    job "unit" {
      role      = "unit"
      key       = "UT"
      name      = "Unit"
      fragments = ["checkout", "composer-install", "run-phpunit"]
      params {
        backend = "mariadb10"
      }
    }

    job "functional" {
      role      = "functional"
      key       = "F"
      name      = "Functional"
      backends  = ["mariadb10", "postgres10"]
      chunks    = 2
      fragments = ["checkout", "composer-install", "start-functional-deps", "split-functional", "run-phpunit-functional"]
    }
  }
}
`

// SecurityDescriptorYAML declares the security variant of a plan in YAML.
const SecurityDescriptorYAML = `
plans:
  - project: CORE
    key: SEC
    name: Core security pre-merge
    policy: restricted-security
    params:
      image: typo3gmbh/php74:latest
    stages:
      - name: Main
        jobs:
          - role: unit
            key: UT
            name: Unit
            fragments: [checkout, composer-install, run-phpunit]
            params:
              backend: mariadb10
`

// CustomFragmentsHCL declares an expression fragment usable from plans.
const CustomFragmentsHCL = `
fragment "say-hello" {
  description = "Greet ${param.who}"
  requires    = ["who"]
  body        = "echo hello ${param.who}"
}
`
