package constants

import (
	"errors"
	"net/http"
)

// CodedError carries the HTTP status an error should be reported with.
type CodedError struct {
	code int
	err  error
}

func NewCodedError(code int, err error) *CodedError {
	return &CodedError{code: code, err: err}
}

func (e *CodedError) Error() string {
	return e.err.Error()
}

func (e *CodedError) Unwrap() error {
	return e.err
}

func (e *CodedError) Code() int {
	return e.code
}

var ErrDBNotFound = NewCodedError(http.StatusNotFound, errors.New("not found in db"))
