// Package bounded provides string and sequence types whose maximum size is
// part of the type. Writes and JSON decoding that would exceed the bound fail
// with a *CapacityError instead of growing or truncating.
//
// A capacity is declared with an empty marker type:
//
//	type NameCap struct{}
//
//	func (NameCap) Cap() int { return 32 }
//
//	var name bounded.String[NameCap]
//	err := name.Set("demo")
package bounded

import "fmt"

// Capacity reports the maximum size of a bounded container.
type Capacity interface {
	Cap() int
}

// CapacityError is returned when a value does not fit a bounded container.
type CapacityError struct {
	Capacity int
	Length   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("bounded: length %d exceeds capacity %d", e.Length, e.Capacity)
}

func capOf[C Capacity]() int {
	var c C
	return c.Cap()
}
