package fragment

import (
	"errors"
	"fmt"
)

// ErrUnknownFragment is matched by every UnknownFragmentError.
var ErrUnknownFragment = errors.New("unknown fragment")

// ErrDuplicateFragment is returned when a name is registered twice.
var ErrDuplicateFragment = errors.New("fragment already registered")

// UnknownFragmentError is returned by Library.Get for unregistered names.
type UnknownFragmentError struct {
	Name string
}

func (e *UnknownFragmentError) Error() string {
	return fmt.Sprintf("unknown fragment %q", e.Name)
}

// Is makes errors.Is(err, ErrUnknownFragment) match.
func (e *UnknownFragmentError) Is(target error) bool {
	return target == ErrUnknownFragment
}
