package trace

import (
	"errors"
	"fmt"

	"github.com/roach88/bankmbt/internal/itf"
)

// ErrorKind classifies decode failures.
type ErrorKind string

const (
	// KindMalformedBigInt marks a bigint payload that is not a valid
	// integer or does not fit the model's int64 amounts.
	KindMalformedBigInt ErrorKind = "MalformedBigInt"

	// KindMalformedFixture marks content that is not valid JSON or has the
	// wrong value types.
	KindMalformedFixture ErrorKind = "MalformedFixture"

	// KindSchemaViolation marks a document that does not have the shape of
	// a trace.
	KindSchemaViolation ErrorKind = "SchemaViolation"

	// KindMissingArgument marks a recognised action whose parameter was
	// not picked.
	KindMissingArgument ErrorKind = "MissingArgument"
)

// DecodeError reports fixture content that cannot be decoded.
type DecodeError struct {
	Kind ErrorKind
	Path string
	// Step is the index of the offending state, or -1 for document level
	// failures.
	Step int
	// Field locates the value inside the step, e.g. "bank_state.next_id".
	Field   string
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	loc := e.Path
	if e.Step >= 0 {
		loc = fmt.Sprintf("%s: step %d", loc, e.Step)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s: %s", loc, e.Kind, e.Field, msg)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Kind, msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// LoadError reports a fixture file that could not be read.
type LoadError struct {
	Index int
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("read fixture #%d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of a decode error, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// kindFor maps a value-level failure onto a decode error kind.
func kindFor(err error) ErrorKind {
	if errors.Is(err, itf.ErrMalformedBigInt) {
		return KindMalformedBigInt
	}
	return KindMalformedFixture
}

func stepError(path string, step int, field string, err error) *DecodeError {
	return &DecodeError{
		Kind:  kindFor(err),
		Path:  path,
		Step:  step,
		Field: field,
		Err:   err,
	}
}
