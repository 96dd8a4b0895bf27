package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := E(CodeNotFound, "DocumentService.Delete", "document not found", ErrNotFound)
	assert.Equal(t, "DocumentService.Delete: document not found: not found", err.Error())

	err = E(CodeInternal, "", "boom", nil)
	assert.Equal(t, "boom", err.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	inner := errors.New("pg down")
	err := E(CodeInternal, "Repo.Get", "query failed", inner)

	assert.ErrorIs(t, err, inner)
	assert.True(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(err, CodeNotFound))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsCode(wrapped, CodeInternal))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidArgument: http.StatusBadRequest,
		CodeUnsupported:     http.StatusBadRequest,
		CodeUnauthorized:    http.StatusUnauthorized,
		CodeForbidden:       http.StatusForbidden,
		CodeNotFound:        http.StatusNotFound,
		CodeConflict:        http.StatusConflict,
		CodeUnavailable:     http.StatusServiceUnavailable,
		CodeTimeout:         http.StatusGatewayTimeout,
		CodeInternal:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(E(code, "op", "msg", nil)), string(code))
	}

	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
