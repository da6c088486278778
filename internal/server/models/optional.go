package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from a present one. A field
// that is present with JSON null decodes to Set=true and the zero Value,
// which for pointer types means "clear".
type Optional[T any] struct {
	Set   bool
	Value T
	// Null records that the field was present as JSON null.
	Null bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Set = true
	o.Value = v
	o.Null = bytes.Equal(bytes.TrimSpace(b), []byte("null"))
	return nil
}

// MarshalJSON encodes the held value; an unset Optional encodes as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
