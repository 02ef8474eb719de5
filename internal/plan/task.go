package plan

import (
	"maps"
	"slices"
)

// Interpreter names how the CI executor runs a task body.
type Interpreter string

const (
	// InterpreterShell runs Body as an inline script (/bin/sh or cmd.exe).
	InterpreterShell Interpreter = "shell"
	// InterpreterCommand runs Body as a single executable command line.
	InterpreterCommand Interpreter = "command"
	// InterpreterCheckout checks out the repository; Body names the repository
	// and may be empty for the plan's default repository.
	InterpreterCheckout Interpreter = "vcs-checkout"
	// InterpreterJUnitParser parses JUnit XML result files; Body holds the
	// result file glob.
	InterpreterJUnitParser Interpreter = "junit-parser"
)

// Valid reports whether i is one of the known interpreter kinds.
func (i Interpreter) Valid() bool {
	switch i {
	case InterpreterShell, InterpreterCommand, InterpreterCheckout, InterpreterJUnitParser:
		return true
	}
	return false
}

// RequiresBody reports whether a task of this kind is meaningless without a body.
func (i Interpreter) RequiresBody() bool {
	return i == InterpreterShell || i == InterpreterCommand || i == InterpreterJUnitParser
}

// Task is a single executable step of a Job.
type Task struct {
	Description string            `json:"description" yaml:"description"`
	Interpreter Interpreter       `json:"interpreter" yaml:"interpreter"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
	Environment map[string]string `json:"environment,omitempty" yaml:"environment,omitempty"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Environment != nil {
		out.Environment = maps.Clone(t.Environment)
	}
	return out
}

// EnvironmentKeys returns the task's environment variable names in sorted order.
func (t Task) EnvironmentKeys() []string {
	return slices.Sorted(maps.Keys(t.Environment))
}

func cloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
