package params

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToCty returns the set as a cty object so HCL templates can address
// bindings as param.<name>. Ints become numbers; everything else a string.
func (s Set) ToCty() cty.Value {
	if len(s.values) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(s.values))
	for k, v := range s.values {
		if i, ok := v.AsInt(); ok {
			attrs[k] = cty.NumberIntVal(int64(i))
			continue
		}
		attrs[k] = cty.StringVal(v.String())
	}
	return cty.ObjectVal(attrs)
}

// FromCty converts a single HCL value into a Value for name.
func FromCty(name string, val cty.Value) (Value, error) {
	if val.IsNull() {
		return Value{}, fmt.Errorf("parameter %q: value is null", name)
	}
	if !val.IsWhollyKnown() {
		return Value{}, fmt.Errorf("parameter %q: value is not known", name)
	}

	switch val.Type() {
	case cty.Number:
		var i int
		if err := gocty.FromCtyValue(val, &i); err != nil {
			return Value{}, fmt.Errorf("parameter %q: %w", name, err)
		}
		return Int(i), nil
	case cty.String:
		return Parse(name, val.AsString())
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return Value{}, fmt.Errorf("parameter %q: expected a string, number or bool, got %s", name, val.Type().FriendlyName())
	}
	return Parse(name, str.AsString())
}

// SetFromCty converts an object or map value into a Set.
func SetFromCty(val cty.Value) (Set, error) {
	if val.IsNull() {
		return Set{}, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return Set{}, fmt.Errorf("parameters must be an object, got %s", ty.FriendlyName())
	}

	s := Set{values: map[string]Value{}}
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		pv, err := FromCty(k.AsString(), v)
		if err != nil {
			return Set{}, err
		}
		s.values[k.AsString()] = pv
	}
	return s, nil
}
