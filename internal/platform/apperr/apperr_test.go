// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
)

/*
TestKind_HTTPStatus pins the status mapping of every error kind.
*/
func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
	}{
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest},
		{"conflict", apperr.Conflict("Email already exists"), http.StatusBadRequest},
		{"unauthenticated", apperr.Unauthenticated("Please login"), http.StatusBadRequest},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden},
		{"not_found", apperr.NotFound("Course"), http.StatusNotFound},
		{"rate_limited", apperr.RateLimited(3), http.StatusTooManyRequests},
		{"upstream", apperr.Upstream("mail failed", errors.New("smtp")), http.StatusInternalServerError},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.Equal(t, tt.name, tt.err.Kind.String())
		})
	}
}

/*
TestAppError_Chain verifies that wrapped AppErrors are still discoverable.
*/
func TestAppError_Chain(t *testing.T) {
	cause := errors.New("connection refused")
	base := apperr.Upstream("Cache unavailable", cause)
	wrapped := fmt.Errorf("course_service_get_failed: %w", base)

	require.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.IsKind(wrapped, apperr.KindUpstream))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, "Cache unavailable", apperr.As(wrapped).Message)
	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestAppError_WithCode checks that derived errors do not mutate the original.
*/
func TestAppError_WithCode(t *testing.T) {
	base := apperr.Unauthenticated("Could not refresh token")
	derived := base.WithCode("CANNOT_REFRESH").WithCause(errors.New("missing session"))

	assert.Equal(t, "UNAUTHENTICATED", base.Code)
	assert.Nil(t, base.Cause)
	assert.True(t, apperr.HasCode(derived, "CANNOT_REFRESH"))
	assert.Equal(t, apperr.KindUnauthenticated, derived.Kind)
}
