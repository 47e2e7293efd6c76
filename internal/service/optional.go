package service

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes the three states a field of a partial update
// payload can be in: absent from the payload (Set false), explicitly null
// (Set true, Value nil), or carrying a value. Absent fields keep the
// stored value; an explicit null clears a clearable field. This replaces
// value-truthiness merging, under which a field could never be cleared.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a set Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

var jsonNull = []byte("null")

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys
// present in the payload, which is what makes Set a presence signal.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return jsonNull, nil
	}
	return json.Marshal(o.Value)
}
