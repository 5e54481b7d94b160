package simplifiedtax

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is the sentinel every *ValidationError unwraps to.
	ErrValidation = errors.New("invalid taxpayer profile")

	// ErrInvariant marks programming defects inside the engine.
	ErrInvariant = errors.New("engine invariant violated")
)

// FieldError describes one offending input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every field problem found in a raw profile or
// parameter set.
type ValidationError struct {
	Fields []FieldError

	// subject replaces the default message prefix.
	subject string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	subject := ErrValidation.Error()
	if e.subject != "" {
		subject = e.subject
	}
	return fmt.Sprintf("%s: %s", subject, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// InvariantError reports that evaluation reached a state it has no transition for.
type InvariantError struct {
	State  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: state %q: %s", ErrInvariant, e.State, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }
