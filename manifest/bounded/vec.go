package bounded

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Vec is an ordered sequence of at most C.Cap() elements.
type Vec[T any, C Capacity] struct {
	items []T
}

// NewVec builds a Vec from items, or returns a *CapacityError if there are too many.
func NewVec[T any, C Capacity](items ...T) (Vec[T, C], error) {
	var v Vec[T, C]
	for _, it := range items {
		if err := v.Push(it); err != nil {
			return Vec[T, C]{}, err
		}
	}
	return v, nil
}

// Push appends x. A full Vec is left unchanged.
func (v *Vec[T, C]) Push(x T) error {
	n := capOf[C]()
	if len(v.items) >= n {
		return &CapacityError{Capacity: n, Length: len(v.items) + 1}
	}
	if v.items == nil {
		v.items = make([]T, 0, n)
	}
	v.items = append(v.items, x)
	return nil
}

func (v Vec[T, C]) Len() int {
	return len(v.items)
}

func (v Vec[T, C]) Cap() int {
	return capOf[C]()
}

// At returns the i'th element. It panics if i is out of range.
func (v Vec[T, C]) At(i int) T {
	return v.items[i]
}

// Items returns a copy of the elements.
func (v Vec[T, C]) Items() []T {
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Each calls fn for every element in order until fn returns false.
func (v Vec[T, C]) Each(fn func(i int, x T) bool) {
	for i, x := range v.items {
		if !fn(i, x) {
			return
		}
	}
}

func (v Vec[T, C]) MarshalJSON() ([]byte, error) {
	if v.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.items)
}

func (v *Vec[T, C]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("bounded: sequence is null")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if n := capOf[C](); len(raw) > n {
		return &CapacityError{Capacity: n, Length: len(raw)}
	}
	var out Vec[T, C]
	for _, r := range raw {
		var x T
		if err := json.Unmarshal(r, &x); err != nil {
			return err
		}
		if err := out.Push(x); err != nil {
			return err
		}
	}
	*v = out
	return nil
}

func (v Vec[T, C]) MarshalYAML() (interface{}, error) {
	if v.items == nil {
		return []T{}, nil
	}
	return v.items, nil
}
