package tools

import (
	"errors"
	"fmt"
)

var (
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrOverBudget = errors.New("over budget")
	ErrGateway    = errors.New("gateway error")
)

// Error is a tool failure whose message is shown to the driving model as-is.
// Kind is one of the Err* sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func parseErrorf(format string, args ...any) error {
	return newError(ErrParse, format, args...)
}

func validationErrorf(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func notFoundErrorf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func overBudgetErrorf(format string, args ...any) error {
	return newError(ErrOverBudget, format, args...)
}

func gatewayErrorf(format string, args ...any) error {
	return newError(ErrGateway, format, args...)
}
