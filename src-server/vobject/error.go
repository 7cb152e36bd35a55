package vobject

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every error returned by this package and by the accessor
// layers built on top of it matches exactly one of the top-level kinds
// through errors.Is.
var (
	ErrParser                  = errors.New("parser error")
	ErrWrongRootTag            = errors.New("wrong root tag")
	ErrRequiredPropertyMissing = errors.New("required property missing")
	ErrDateTime                = errors.New("date-time conversion error")
)

// Parser error details, all of them also match ErrParser.
var (
	ErrMalformedLine   = fmt.Errorf("%w: malformed line", ErrParser)
	ErrTagMismatch     = fmt.Errorf("%w: BEGIN/END mismatch", ErrParser)
	ErrUnterminated    = fmt.Errorf("%w: unterminated component", ErrParser)
	ErrNoRoot          = fmt.Errorf("%w: no component found", ErrParser)
	ErrTrailingContent = fmt.Errorf("%w: content after root component", ErrParser)
	ErrOrphanProperty  = fmt.Errorf("%w: property outside of any component", ErrParser)
)

type CustomError struct {
	msg  string
	kind error
	args map[string]any
}

// Create a new custom error of the given kind. args holds diagnostics such
// as the offending line content.
func NewCustomError(kind error, msg string, args map[string]any) *CustomError {
	if args == nil {
		args = make(map[string]any)
	}
	return &CustomError{
		msg:  msg,
		kind: kind,
		args: args,
	}
}

// Get the error message
func (e *CustomError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.kind.Error())
	if e.msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.msg)
	}
	if len(e.args) == 0 {
		return sb.String()
	}

	keys := make([]string, 0, len(e.args))
	for key := range e.args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sb.WriteString(" |")
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf(" %s: %q", key, fmt.Sprint(e.args[key])))
	}
	return sb.String()
}

func (e *CustomError) Unwrap() error {
	return e.kind
}

// Get a diagnostic value attached to the error
func (e *CustomError) Arg(key string) (any, bool) {
	value, ok := e.args[key]
	return value, ok
}
