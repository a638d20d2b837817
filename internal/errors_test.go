package internal

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("pq: connection refused")
	e := NewHTTPError(http.StatusServiceUnavailable, "try again later",
		WithError(cause),
		WithRequestID("req-1"),
		WithData(map[string]any{"retry_after": 30}),
	)

	assert.Equal(t, "try again later", e.Error())
	assert.Equal(t, http.StatusServiceUnavailable, e.StatusCode())
	assert.Equal(t, "Service Unavailable", e.StatusText())
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, 30, e.Data["retry_after"])
	assert.ErrorIs(t, e, cause)
}

func TestErrorConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *HTTPError
		code int
	}{
		{"bad request", ErrBadRequest("m"), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized("m"), http.StatusUnauthorized},
		{"forbidden", ErrForbidden("m"), http.StatusForbidden},
		{"not found", ErrNotFound("m"), http.StatusNotFound},
		{"unprocessable", ErrUnprocessable("m"), http.StatusUnprocessableEntity},
		{"internal", ErrInternal("m"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, "m", tt.err.Message)
		})
	}
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	require.Nil(t, AsHTTPError(nil))
	require.Nil(t, AsHTTPError(errors.New("plain")))

	e := ErrNotFound("gone")
	assert.Same(t, e, AsHTTPError(e))
}
