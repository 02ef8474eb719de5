// Package fragment is the catalogue of reusable, parameterized task
// templates that jobs are composed from.
//
// A Library maps fragment names to templates. Compiled-in catalogues under
// modules/ register plain Go functions through the Module interface; HCL
// files can add expression fragments whose bodies are HCL templates over
// param.<name>. Either way a template is a pure function from a params.Set
// to a plan.Task, so rendering the same fragment twice with the same
// bindings yields the same task.
package fragment
