package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeRecipeNotFound, http.StatusNotFound},
		{CodeDuplicateRecipe, http.StatusConflict},
		{CodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		err := NewAppError(c.code, "x", "")
		assert.Equal(t, c.want, err.StatusCode(), string(c.code))
	}
}

func TestUpstreamFailuresSurfaceAsServerErrors(t *testing.T) {
	for _, err := range []*AppError{
		NewExtractionFailedError(errors.New("bad json")),
		NewFetchBlockedError("https://example.com/tarte"),
		NewFetchFailedError("https://example.com/tarte", errors.New("timeout")),
		NewAppError(CodeExternalServiceError, "Failed to send email", ""),
	} {
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode(), string(err.Code))
	}
}

func TestFetchBlockedNamesDomain(t *testing.T) {
	err := NewFetchBlockedError("https://www.marmiton.org/recettes/tarte")
	assert.Contains(t, err.Message, "www.marmiton.org")
	assert.Equal(t, "https://www.marmiton.org/recettes/tarte", err.Metadata["url"])

	// Unparsable input falls back to the raw string
	err = NewFetchBlockedError("not a url")
	assert.Contains(t, err.Message, "not a url")
}

func TestWrapKeepsAppErrors(t *testing.T) {
	original := NewForbiddenError("")
	assert.Same(t, original, Wrap(original, "ignored"))

	wrapped := Wrap(errors.New("boom"), "context")
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.ErrorContains(t, wrapped.Unwrap(), "boom")
}
