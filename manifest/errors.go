package manifest

import (
	"errors"
	"fmt"
)

// ErrMalformedEncoding matches every error returned by FromSlice.
var ErrMalformedEncoding = errors.New("malformed manifest encoding")

// DecodeError wraps the reason a manifest could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedEncoding, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedEncoding
}

// MissingFieldError indicates a required field was absent or null.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// FieldError attaches the JSON key to an error from decoding its value.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ArrayLengthError indicates a fixed-length array had the wrong number of entries.
type ArrayLengthError struct {
	Field string
	Want  int
	Got   int
}

func (e *ArrayLengthError) Error() string {
	return fmt.Sprintf("%s: expected %d entries, got %d", e.Field, e.Want, e.Got)
}

// UnknownRegionTypeError indicates a region_type outside the schema.
type UnknownRegionTypeError struct {
	Name string
}

func (e *UnknownRegionTypeError) Error() string {
	return fmt.Sprintf("unknown region type %q", e.Name)
}
