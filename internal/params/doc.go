// Package params binds named placeholders (database backend, chunk index,
// image tag, project key, ...) to concrete values for one composition.
//
// A Set is immutable: every helper that changes bindings returns a new Set,
// so a Set can be handed to any number of fragment templates without one
// template observing another's changes. Resolve is the only merge entry
// point and it never invents defaults; a placeholder is either bound by the
// caller or the composition fails.
package params
