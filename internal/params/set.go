package params

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrMissingRequiredParameter is matched by every MissingRequiredParameterError.
var ErrMissingRequiredParameter = errors.New("missing required parameter")

// ErrWrongKind is returned by the typed getters when a placeholder is bound
// to a value of a different kind.
var ErrWrongKind = errors.New("parameter has the wrong kind")

// MissingRequiredParameterError names the placeholders that were not bound.
type MissingRequiredParameterError struct {
	// Fragment is the fragment that asked for the placeholders, if known.
	Fragment string
	Names    []string
}

func (e *MissingRequiredParameterError) Error() string {
	names := strings.Join(e.Names, ", ")
	if e.Fragment != "" {
		return fmt.Sprintf("fragment %q: missing required parameter(s): %s", e.Fragment, names)
	}
	return "missing required parameter(s): " + names
}

// Is makes errors.Is(err, ErrMissingRequiredParameter) match.
func (e *MissingRequiredParameterError) Is(target error) bool {
	return target == ErrMissingRequiredParameter
}

// Set maps placeholder names to values. The zero Set is empty and usable.
type Set struct {
	values map[string]Value
}

// NewSet copies values into a new Set. Invalid (zero) values are dropped.
func NewSet(values map[string]Value) Set {
	s := Set{values: make(map[string]Value, len(values))}
	for k, v := range values {
		if v.IsValid() {
			s.values[k] = v
		}
	}
	return s
}

// FromStrings parses textual bindings, applying the backend rule of Parse.
func FromStrings(raw map[string]string) (Set, error) {
	s := Set{values: make(map[string]Value, len(raw))}
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		v, err := Parse(k, raw[k])
		if err != nil {
			return Set{}, fmt.Errorf("parameter %q: %w", k, err)
		}
		s.values[k] = v
	}
	return s, nil
}

// Len returns the number of bound placeholders.
func (s Set) Len() int { return len(s.values) }

// Has reports whether name is bound.
func (s Set) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Get returns the value bound to name.
func (s Set) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Keys returns the bound names in sorted order.
func (s Set) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// String returns the textual form of name's value.
func (s Set) String(name string) (string, error) {
	v, ok := s.values[name]
	if !ok {
		return "", &MissingRequiredParameterError{Names: []string{name}}
	}
	return v.String(), nil
}

// Int returns name's value if it is an int.
func (s Set) Int(name string) (int, error) {
	v, ok := s.values[name]
	if !ok {
		return 0, &MissingRequiredParameterError{Names: []string{name}}
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("parameter %q is a %s: %w", name, v.Kind(), ErrWrongKind)
	}
	return i, nil
}

// Backend returns name's value if it is a backend.
func (s Set) Backend(name string) (Backend, error) {
	v, ok := s.values[name]
	if !ok {
		return "", &MissingRequiredParameterError{Names: []string{name}}
	}
	b, ok := v.AsBackend()
	if !ok {
		return "", fmt.Errorf("parameter %q is a %s: %w", name, v.Kind(), ErrWrongKind)
	}
	return b, nil
}

// With returns a copy of s with name bound to v.
func (s Set) With(name string, v Value) Set {
	out := s.clone()
	out.values[name] = v
	return out
}

// Without returns a copy of s with name unbound.
func (s Set) Without(name string) Set {
	out := s.clone()
	delete(out.values, name)
	return out
}

// Merge returns a copy of s with every binding of other laid on top.
func (s Set) Merge(other Set) Set {
	out := s.clone()
	for k, v := range other.values {
		out.values[k] = v
	}
	return out
}

// Missing returns the names from required that are not bound, in the order given.
func (s Set) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := s.values[name]; !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Require fails with a MissingRequiredParameterError when any name is unbound.
func (s Set) Require(required ...string) error {
	if missing := s.Missing(required...); len(missing) > 0 {
		return &MissingRequiredParameterError{Names: missing}
	}
	return nil
}

// Strings returns the textual form of every binding.
func (s Set) Strings() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v.String()
	}
	return out
}

// Equal reports whether both sets bind the same names to the same values.
func (s Set) Equal(other Set) bool {
	return maps.Equal(s.values, other.values)
}

func (s Set) clone() Set {
	out := Set{values: make(map[string]Value, len(s.values)+1)}
	for k, v := range s.values {
		out.values[k] = v
	}
	return out
}

// Resolve merges overrides onto base (overrides win on collision) and checks
// that every required placeholder is bound afterwards.
func Resolve(base, overrides Set, required ...string) (Set, error) {
	merged := base.Merge(overrides)
	if err := merged.Require(required...); err != nil {
		return Set{}, err
	}
	return merged, nil
}
