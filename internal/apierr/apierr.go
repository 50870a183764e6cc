package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

const (
	CodeNotAuthenticated   = "not_authenticated"
	CodeNotAuthorized      = "not_authorized"
	CodeNotFound           = "not_found"
	CodeAlreadyExists      = "already_exists"
	CodeAlreadyAdded       = "already_added"
	CodeInvalidArgument    = "invalid_argument"
	CodePersistenceFailure = "persistence_failure"
)

func NotAuthenticated(err error) *Error {
	return New(http.StatusUnauthorized, CodeNotAuthenticated, err)
}

func NotAuthorized(err error) *Error {
	return New(http.StatusForbidden, CodeNotAuthorized, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func AlreadyExists(err error) *Error {
	return New(http.StatusConflict, CodeAlreadyExists, err)
}

func AlreadyAdded(err error) *Error {
	return New(http.StatusConflict, CodeAlreadyAdded, err)
}

func InvalidArgument(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidArgument, err)
}

func Persistence(err error) *Error {
	return New(http.StatusInternalServerError, CodePersistenceFailure, err)
}

// StatusFor maps any error to the HTTP status the handlers should emit.
func StatusFor(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

func CodeFor(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code
	}
	return "internal_error"
}

func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
