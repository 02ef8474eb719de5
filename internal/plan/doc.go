// Package plan defines the value tree the engine builds and renders: a Plan
// holds ordered Stages, a Stage holds Jobs that may run in parallel, and a
// Job holds ordered Tasks plus the final tasks, artifacts and requirements
// the CI executor needs to run it.
//
// Everything in this package is a plain value. Jobs and Tasks are never
// shared between owners; use Clone when the same job has to appear twice.
package plan
