package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnsupported     Code = "UNSUPPORTED_FORMAT"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeTimeout         Code = "TIMEOUT"
	CodeInternal        Code = "INTERNAL"
)

// AppError is the error contract shared by services, repos and handlers.
// Message is safe to show to clients; Err is the wrapped cause and stays
// in logs.
type AppError struct {
	Code    Code
	Op      string // ex: "DocumentService.Upload"
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprint(e.Err))
	}
	if len(parts) == 0 {
		return "error"
	}
	return strings.Join(parts, ": ")
}

func (e *AppError) Unwrap() error { return e.Err }

func E(code Code, op, msg string, err error) error {
	return &AppError{Code: code, Op: op, Message: msg, Err: err}
}

func IsCode(err error, code Code) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

func HTTPStatus(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		switch ae.Code {
		case CodeInvalidArgument, CodeUnsupported:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeUnavailable:
			return http.StatusServiceUnavailable
		case CodeTimeout:
			return http.StatusGatewayTimeout
		default:
			return http.StatusInternalServerError
		}
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ErrNotFound is the repo-level sentinel; services wrap it with an op
// before it reaches a handler.
var ErrNotFound = errors.New("not found")
