package tlyaml

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEntry = errors.New("tlyaml: invalid transfer entry")
	ErrUnknownTag   = errors.New("tlyaml: unknown tag")
	ErrMissingField = errors.New("tlyaml: missing field")
	ErrFieldRange   = errors.New("tlyaml: field value out of range")
)

// EntryError ties a failure to the record that caused it.
type EntryError struct {
	Index int
	Tag   any
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (tag %v): %v", e.Index, e.Tag, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
