package main

import "fmt"

// newUserErrorf is a user-facing error.
// this function is mostly to avoid linters complain about errors starting with a capitalized letter.
func newUserErrorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// parleyError is a wrapper around an error that adds additional context.
type parleyError struct {
	err    error
	reason string
}

func (p parleyError) Error() string {
	return p.err.Error()
}

// Unwrap exposes the cause so errors.Is and errors.As see through the
// user-facing wrapper.
func (p parleyError) Unwrap() error {
	return p.err
}

func (p parleyError) Reason() string {
	return p.reason
}
