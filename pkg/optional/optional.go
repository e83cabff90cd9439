// Package optional distinguishes "not provided" from "provided as the zero value"
// in partial-update payloads.
package optional

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that may be absent. The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an unset Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse returns the held value, or def when unset.
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// ApplyTo overwrites *dst when the value is set and reports whether it did.
func (o Optional[T]) ApplyTo(dst *T) bool {
	if !o.set {
		return false
	}
	*dst = o.value
	return true
}

// Map converts a set value with f and keeps an unset value unset.
func Map[T, U any](o Optional[T], f func(T) U) Optional[U] {
	if !o.set {
		return Optional[U]{}
	}
	return Some(f(o.value))
}

// UnmarshalJSON treats JSON null as "not provided". An absent key never
// reaches this method and also stays unset.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// MarshalJSON writes null for an unset value.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
