package composer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrComposition is matched by every CompositionError.
var ErrComposition = errors.New("job composition failed")

// ErrUnknownRole is returned when a job names a role with no profile.
var ErrUnknownRole = errors.New("unknown role")

// CompositionError reports the first failure while composing a job. Err is
// the cause, e.g. a *params.MissingRequiredParameterError or a
// *fragment.UnknownFragmentError.
type CompositionError struct {
	Role string
	Key  string
	// Fragment is empty when the failure is not tied to one fragment.
	Fragment string
	Err      error
}

func (e *CompositionError) Error() string {
	var b strings.Builder
	b.WriteString("composing")
	if e.Role != "" {
		fmt.Fprintf(&b, " %s", e.Role)
	}
	fmt.Fprintf(&b, " job %q", e.Key)
	if e.Fragment != "" {
		fmt.Fprintf(&b, " at fragment %q", e.Fragment)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap exposes the cause.
func (e *CompositionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrComposition) match.
func (e *CompositionError) Is(target error) bool {
	return target == ErrComposition
}
