// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tuber/internal/platform/apperr"
)

/*
TestAppError_StatusMapping verifies the status code of every failure kind.
*/
func TestAppError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"validation", apperr.ValidationError("bad"), apperr.CodeValidation, http.StatusBadRequest},
		{"conflict", apperr.Conflict("dup"), apperr.CodeConflict, http.StatusConflict},
		{"not_found", apperr.NotFound("Account"), apperr.CodeNotFound, http.StatusNotFound},
		{"invalid_credential", apperr.InvalidCredential("nope"), apperr.CodeInvalidCredential, http.StatusBadRequest},
		{"token_invalid", apperr.TokenInvalid("x"), apperr.CodeTokenInvalid, http.StatusUnauthorized},
		{"token_expired", apperr.TokenExpired("x"), apperr.CodeTokenExpired, http.StatusUnauthorized},
		{"token_stale", apperr.TokenStale("x"), apperr.CodeTokenStale, http.StatusUnauthorized},
		{"unauthorized", apperr.Unauthorized("x"), apperr.CodeUnauthorized, http.StatusUnauthorized},
		{"upstream", apperr.Upstream(errors.New("db down")), apperr.CodeUpstream, http.StatusInternalServerError},
		{"internal", apperr.Internal(errors.New("boom")), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

/*
TestAppError_IsMatchesByCode verifies errors.Is compares codes, not pointers.
*/
func TestAppError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", apperr.TokenStale("Refresh token has been rotated"))

	assert.True(t, errors.Is(wrapped, apperr.TokenStale("")))
	assert.False(t, errors.Is(wrapped, apperr.TokenExpired("")))
	assert.True(t, apperr.HasCode(wrapped, apperr.CodeTokenStale))
}

/*
TestAppError_NotFoundMessage verifies the resource name is embedded.
*/
func TestAppError_NotFoundMessage(t *testing.T) {
	assert.Equal(t, "Account not found", apperr.NotFound("Account").Error())
}

/*
TestBoundary verifies raw errors become upstream failures and classified ones pass through.
*/
func TestBoundary(t *testing.T) {
	assert.Nil(t, apperr.Boundary(nil))

	cause := errors.New("connection refused")
	converted := apperr.As(apperr.Boundary(cause))
	require.NotNil(t, converted)
	assert.Equal(t, apperr.CodeUpstream, converted.Code)
	assert.ErrorIs(t, converted, cause)

	conflict := apperr.Conflict("Email is already registered")
	assert.Same(t, conflict, apperr.As(apperr.Boundary(fmt.Errorf("wrap: %w", conflict))))
}
