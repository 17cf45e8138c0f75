package model

import "encoding/json"

// Optional carries a value together with whether it was present in the input.
// A field that is absent from a JSON document stays unset; a field that is
// present (including an explicit null) is set. Use Optional[*T] when null must
// be distinguishable from a value.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON marks the field as present and decodes its value.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON encodes the held value, or null when unset.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
