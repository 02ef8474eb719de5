package composer

import (
	"fmt"

	"github.com/specialistvlad/burstplan/internal/plan"
)

// Built-in roles.
const (
	RoleLint        = "lint"
	RoleUnit        = "unit"
	RoleFunctional  = "functional"
	RoleAcceptance  = "acceptance"
	RoleIntegration = "integration"
)

// Profile is what a role contributes to every job composed for it. Options
// passed to Compose extend a profile; they never remove from it.
type Profile struct {
	FinalTasks          []string
	Artifacts           []plan.Artifact
	Requirements        []plan.Requirement
	PluginConfiguration plan.PluginConfiguration
}

func (p Profile) clone() Profile {
	out := Profile{
		FinalTasks:          append([]string(nil), p.FinalTasks...),
		Artifacts:           append([]plan.Artifact(nil), p.Artifacts...),
		Requirements:        append([]plan.Requirement(nil), p.Requirements...),
		PluginConfiguration: p.PluginConfiguration.Clone(),
	}
	return out
}

// AcceptanceReport is the artifact every acceptance job keeps.
func AcceptanceReport() plan.Artifact {
	return plan.Artifact{Name: "Test Report", CopyPattern: "typo3temp/var/tests/AcceptanceReports/", Shared: false}
}

// DefaultProfiles returns the built-in role profiles.
func DefaultProfiles() map[string]Profile {
	docker := []plan.Requirement{plan.DockerRequirement()}
	return map[string]Profile{
		RoleLint: {Requirements: docker},
		RoleUnit: {
			FinalTasks:   []string{"parse-phpunit-junit"},
			Requirements: docker,
		},
		RoleFunctional: {
			FinalTasks:   []string{"stop-docker-deps", "parse-phpunit-junit"},
			Requirements: docker,
		},
		RoleAcceptance: {
			FinalTasks:   []string{"stop-docker-deps", "parse-acceptance-junit"},
			Artifacts:    []plan.Artifact{AcceptanceReport()},
			Requirements: docker,
		},
		RoleIntegration: {Requirements: docker},
	}
}

// RegisterRole adds or replaces the profile for role.
func (c *Composer) RegisterRole(role string, p Profile) error {
	if role == "" {
		return fmt.Errorf("role name must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[role] = p.clone()
	return nil
}

// Profile returns a copy of role's profile.
func (c *Composer) Profile(role string) (Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.roles[role]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q", ErrUnknownRole, role)
	}
	return p.clone(), nil
}
