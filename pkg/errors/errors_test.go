package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("name is required"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("missing token", nil), http.StatusUnauthorized},
		{"not found", NewNotFound("dataset not found"), http.StatusNotFound},
		{"unavailable", NewUnavailable("graph store unavailable", nil), http.StatusServiceUnavailable},
		{"internal", NewInternal("query failed", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("get dataset: %w", NewNotFound("dataset")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWrapPreservesType(t *testing.T) {
	err := Wrap(NewNotFound("category"), "delete category")

	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "delete category: category")
}

func TestWrapPlainErrorBecomesInternal(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, "run query")

	assert.True(t, IsInternal(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, "noop"))
}
