// Package config defines the format-agnostic descriptor model, along with
// the Loader interface format-specific packages implement.
//
// The Model is the single source of truth for the builder. Concrete
// loaders for HCL and YAML live in separate packages; both resolve locals
// and literal values at load time, so only fragment templates still carry
// unevaluated expressions.
package config
