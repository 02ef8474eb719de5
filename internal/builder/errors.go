package builder

import (
	"fmt"
	"strings"
)

// BuildError collects every job that failed to build in one plan. The
// individual causes stay reachable through errors.Is and errors.As.
type BuildError struct {
	Plan string
	Errs []error
}

func (e *BuildError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("building plan %s failed:\n- %s", e.Plan, strings.Join(msgs, "\n- "))
}

// Unwrap exposes the per-job causes.
func (e *BuildError) Unwrap() []error { return e.Errs }
