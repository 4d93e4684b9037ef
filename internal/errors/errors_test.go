package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := ValidationError("invalid input")

	assert.Equal(t, TypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Nil(t, err.Cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "validation")
	assert.Contains(t, err.Error(), "invalid input")
}

func TestUnauthorizedError(t *testing.T) {
	err := UnauthorizedError("device not registered")

	assert.Equal(t, TypeUnauthorized, err.Type)
	assert.Equal(t, http.StatusForbidden, err.HTTPStatus())
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("device not found")

	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
}

func TestConflictError(t *testing.T) {
	err := ConflictError("session already active")

	assert.Equal(t, TypeConflict, err.Type)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus())
}

func TestInternalError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := InternalError("store unavailable", cause)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestExternalError(t *testing.T) {
	cause := errors.New("upstream 503")
	err := ExternalError("analysis service failed", cause)

	assert.Equal(t, TypeExternal, err.Type)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
	assert.ErrorIs(t, err, cause)
}

func TestWithField(t *testing.T) {
	err := ValidationError("bad name").WithField("name", "").WithField("user_id", "u1")

	assert.Equal(t, "", err.Context["name"])
	assert.Equal(t, "u1", err.Context["user_id"])
}

func TestToResponse(t *testing.T) {
	err := ConflictError("session already active").WithField("user_id", "u1")
	resp := err.ToResponse()

	assert.Equal(t, "session already active", resp.Error)
	assert.Equal(t, TypeConflict, resp.Type)
	assert.Equal(t, "u1", resp.Context["user_id"])
}

func TestAsStructuredError_PassesThrough(t *testing.T) {
	original := ConflictError("session already active")
	wrapped := fmt.Errorf("handler: %w", original)

	got := AsStructuredError(wrapped)
	require.Same(t, original, got)
}

func TestAsStructuredError_WrapsPlainError(t *testing.T) {
	plain := errors.New("boom")

	got := AsStructuredError(plain)
	require.NotNil(t, got)
	assert.Equal(t, TypeInternal, got.Type)
	assert.ErrorIs(t, got, plain)
}

func TestAsStructuredError_Nil(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))
}
