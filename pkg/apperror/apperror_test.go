package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("bad input").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("who are you").HTTPStatus())
	assert.Equal(t, http.StatusForbidden, Forbidden("not yours").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound("gone", nil).HTTPStatus())
	assert.Equal(t, http.StatusConflict, Conflict("wrong state").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal("boom", nil).HTTPStatus())
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	cause := Conflict("cannot approve a request in status REJECTED")
	wrapped := fmt.Errorf("transition failed: %w", cause)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindConflict, appErr.Kind)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("request not found", errors.New("record not found"))
	assert.Equal(t, "request not found: record not found", err.Error())
	assert.EqualError(t, Conflict("wrong state"), "wrong state")
	assert.Equal(t, "record not found", errors.Unwrap(err).Error())
}

func TestValidationFields(t *testing.T) {
	err := Validation("invalid amount", FieldIssue{Field: "amount", Message: "must be positive"})
	require.Len(t, err.Fields, 1)
	assert.Equal(t, "amount", err.Fields[0].Field)
}
