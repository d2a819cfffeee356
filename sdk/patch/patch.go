// Package patch models sparse updates where a field can be absent, set to a
// value, or explicitly cleared.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is one member of a sparse update. The zero value is absent.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Value returns a Field carrying v.
func Value[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null returns a Field that clears the target.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// From turns an optional pointer into a Field: nil stays absent.
func From[T any](v *T) Field[T] {
	if v == nil {
		return Field[T]{}
	}
	return Value(*v)
}

// HasValue reports whether the field carries a non-null value.
func (f Field[T]) HasValue() bool {
	return f.Set && !f.Null
}

// Ptr returns nil for an absent or null field.
func (f Field[T]) Ptr() *T {
	if !f.HasValue() {
		return nil
	}
	v := f.Value
	return &v
}

// UnmarshalJSON marks the field as present; a JSON null marks it cleared.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		f.Null = true
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes null for absent and cleared fields. Use omitzero on the
// struct tag to drop absent ones.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// IsZero lets encoding/json's omitzero skip absent fields.
func (f Field[T]) IsZero() bool {
	return !f.Set
}

// Map converts the value of a present, non-null field with fn. Absent and
// null fields pass through unchanged.
func Map[T, U any](f Field[T], fn func(T) (U, error)) (Field[U], error) {
	switch {
	case !f.Set:
		return Field[U]{}, nil
	case f.Null:
		return Null[U](), nil
	}
	u, err := fn(f.Value)
	if err != nil {
		return Field[U]{}, err
	}
	return Value(u), nil
}
