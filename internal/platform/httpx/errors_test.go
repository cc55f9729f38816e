package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrValidation, http.StatusBadRequest},
		{ErrDuplicateIdentity, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrEmailNotVerified, http.StatusForbidden},
		{ErrInvalidVerification, http.StatusBadRequest},
		{ErrMissingToken, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusForbidden},
		{ErrForbidden, http.StatusForbidden},
		{ErrConflict, http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, StatusFor(tc.err), tc.err.Error())
		// Wrapping keeps the mapping.
		require.Equal(t, tc.status, StatusFor(fmt.Errorf("context: %w", tc.err)))
	}
}

func TestRespondErrorKeepsWrappedDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("%w: try again in 12 minutes", ErrRateLimited))

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Contains(t, rr.Body.String(), "Rate Limited")
	require.Contains(t, rr.Body.String(), "12 minutes")
}

func TestRespondErrorHidesUnknownDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "connection refused")
}
