package validation

import (
	"errors"
	"fmt"
)

// ── Syntax faults ────────────────────────────────────────────────────────────

// Syntax faults abort a whole Build. Field failures never surface as errors;
// they are collected into Errors instead.
var (
	// ErrSyntax matches every *SyntaxError via errors.Is.
	ErrSyntax = errors.New("validation: syntax error")

	// ErrUnknownRule is returned when a rule token names no registered template.
	ErrUnknownRule = errors.New("rule not found")

	// ErrEmptyRule is returned for an empty token such as "required||email".
	ErrEmptyRule = errors.New("empty rule token")

	// ErrInvalidShape is returned when values, rules or messages are not
	// mappings, or a rule specification is neither a string, list nor mapping.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrInvalidParam is returned by templates whose parameter cannot be used,
	// e.g. "min:abc".
	ErrInvalidParam = errors.New("invalid rule parameter")

	// ErrTooDeep is returned when nesting exceeds the engine's max depth.
	ErrTooDeep = errors.New("payload nested too deeply")
)

// SyntaxError describes a malformed rule declaration or payload shape.
type SyntaxError struct {
	Field string // field key at the level where the fault occurred, may be empty
	Rule  string // offending rule string or token, may be empty
	Err   error  // one of the Err* sentinels above
}

func (e *SyntaxError) Error() string {
	switch {
	case e.Field != "" && e.Rule != "":
		return fmt.Sprintf("validation: %v: '%s' field: '%s'", e.Err, e.Rule, e.Field)
	case e.Field != "":
		return fmt.Sprintf("validation: %v: field: '%s'", e.Err, e.Field)
	case e.Rule != "":
		return fmt.Sprintf("validation: %v: '%s'", e.Err, e.Rule)
	default:
		return fmt.Sprintf("validation: %v", e.Err)
	}
}

// Unwrap exposes the sentinel.
func (e *SyntaxError) Unwrap() error { return e.Err }

// Is reports true for ErrSyntax so callers need not know the exact sentinel.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

func syntaxErr(field, rule string, err error) *SyntaxError {
	return &SyntaxError{Field: field, Rule: rule, Err: err}
}

// IsSyntaxError reports whether err is (or wraps) a syntax fault.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrSyntax)
}
