package bounded

import (
	"encoding/json"
	"errors"
)

// String is UTF-8 text of at most C.Cap() bytes.
type String[C Capacity] struct {
	s string
}

// NewString returns s as a bounded string, or a *CapacityError if it is too long.
func NewString[C Capacity](s string) (String[C], error) {
	var b String[C]
	if err := b.Set(s); err != nil {
		return String[C]{}, err
	}
	return b, nil
}

// MustString is like NewString but panics on overflow.
func MustString[C Capacity](s string) String[C] {
	b, err := NewString[C](s)
	if err != nil {
		panic(err)
	}
	return b
}

// Set replaces the contents. On overflow the string is left unchanged.
func (b *String[C]) Set(s string) error {
	if n := capOf[C](); len(s) > n {
		return &CapacityError{Capacity: n, Length: len(s)}
	}
	b.s = s
	return nil
}

func (b String[C]) String() string {
	return b.s
}

// Len returns the length in bytes.
func (b String[C]) Len() int {
	return len(b.s)
}

func (b String[C]) Cap() int {
	return capOf[C]()
}

func (b String[C]) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.s)
}

func (b *String[C]) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		return errors.New("bounded: string is null")
	}
	return b.Set(*s)
}

func (b String[C]) MarshalYAML() (interface{}, error) {
	return b.s, nil
}
