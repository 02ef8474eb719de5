// Package policy decorates a plan with the permission grants and plan
// variables of one of a closed set of access policies.
package policy

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/burstplan/internal/plan"
)

// Policy names a permission profile. Only the constructors below create one.
type Policy struct {
	name      string
	grants    []plan.Grant
	variables map[string]string
}

// GerritProjectVariable is the plan variable the cherry-pick fragment reads.
const GerritProjectVariable = "gerrit_project"

// Names accepted by ByName.
const (
	NameOpenCore           = "open-core"
	NameRestrictedSecurity = "restricted-security"
)

// ErrUnknownPolicy is returned by ByName for names outside the closed set.
var ErrUnknownPolicy = errors.New("unknown policy")

const (
	groupGmbH     = "TYPO3 GmbH"
	groupCoreTeam = "TYPO3 Core Team"
)

var allCapabilities = []plan.Capability{
	plan.CapabilityAdmin,
	plan.CapabilityView,
	plan.CapabilityEdit,
	plan.CapabilityBuild,
	plan.CapabilityClone,
}

// OpenCore is the policy of the public core project.
func OpenCore() Policy {
	return Policy{
		name: NameOpenCore,
		grants: []plan.Grant{
			{Principal: plan.Principal{Kind: plan.PrincipalGroup, Name: groupGmbH}, Capabilities: allCapabilities},
			{Principal: plan.Principal{Kind: plan.PrincipalGroup, Name: groupCoreTeam}, Capabilities: []plan.Capability{plan.CapabilityView, plan.CapabilityBuild}},
			{Principal: plan.Principal{Kind: plan.PrincipalLoggedIn}, Capabilities: []plan.Capability{plan.CapabilityView}},
			{Principal: plan.Principal{Kind: plan.PrincipalAnonymous}, Capabilities: []plan.Capability{plan.CapabilityView}},
		},
		variables: map[string]string{GerritProjectVariable: "Packages/TYPO3.CMS"},
	}
}

// RestrictedSecurity is the policy of the security team's mirror. Only the
// owning group sees the plan.
func RestrictedSecurity() Policy {
	return Policy{
		name: NameRestrictedSecurity,
		grants: []plan.Grant{
			{Principal: plan.Principal{Kind: plan.PrincipalGroup, Name: groupGmbH}, Capabilities: allCapabilities},
		},
		variables: map[string]string{GerritProjectVariable: "Teams/Security/TYPO3v4-Core"},
	}
}

// ByName returns the policy called name.
func ByName(name string) (Policy, error) {
	switch name {
	case NameOpenCore:
		return OpenCore(), nil
	case NameRestrictedSecurity:
		return RestrictedSecurity(), nil
	}
	return Policy{}, fmt.Errorf("%w %q (known: %s, %s)", ErrUnknownPolicy, name, NameOpenCore, NameRestrictedSecurity)
}

// Names lists every policy ByName accepts.
func Names() []string {
	return []string{NameOpenCore, NameRestrictedSecurity}
}

// Name returns the policy's name.
func (p Policy) Name() string { return p.name }

// Grants returns a copy of the policy's permission grants.
func (p Policy) Grants() []plan.Grant {
	out := make([]plan.Grant, len(p.grants))
	for i, g := range p.grants {
		out[i] = plan.Grant{Principal: g.Principal, Capabilities: slices.Clone(g.Capabilities)}
	}
	return out
}

// Variables returns a copy of the plan variables the policy contributes.
func (p Policy) Variables() map[string]string {
	return maps.Clone(p.variables)
}

// Bind returns a copy of pl carrying the policy's grants and variables.
// Plan variables already set by the descriptor win over policy defaults,
// except gerrit_project, which the policy always owns. pl is not modified.
func Bind(pl *plan.Plan, p Policy) *plan.Plan {
	out := pl.Clone()
	if out == nil {
		return nil
	}
	out.Permissions = p.Grants()
	if out.Variables == nil {
		out.Variables = make(map[string]string, len(p.variables))
	}
	for k, v := range p.variables {
		if _, set := out.Variables[k]; !set || k == GerritProjectVariable {
			out.Variables[k] = v
		}
	}
	out.Policy = p.name
	return out
}
