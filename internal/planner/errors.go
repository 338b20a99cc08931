package planner

import (
	"errors"
	"fmt"
)

var (
	ErrInconsistentBounds      = errors.New("inconsistent bounds for indexes")
	ErrMultipleKeysWithBetween = errors.New("cannot use multiple index keys with a between clause")
	ErrNoModel                 = errors.New("no model to order by")
	ErrNoIndexPolicy           = errors.New("model has no index policy")
	ErrUnsupportedStatement    = errors.New("unsupported filter statement")
	ErrInvalidInterval         = errors.New("invalid interval")
	ErrInvalidPattern          = errors.New("invalid match pattern")
	ErrInvalidOperand          = errors.New("invalid operand")
)

// QueryBuildError reports a query shape that cannot be compiled into a
// correct plan. It is never retried.
type QueryBuildError struct {
	Err    error
	Field  string
	Detail string
}

func newBuildError(err error, field, detail string) *QueryBuildError {
	return &QueryBuildError{
		Err:    err,
		Field:  field,
		Detail: detail,
	}
}

func (e *QueryBuildError) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %s", msg, e.Field)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *QueryBuildError) Unwrap() error {
	return e.Err
}
