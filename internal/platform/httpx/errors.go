// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across the domain layer. Handlers map them to
// HTTP responses through RespondError; services return them (possibly
// wrapped) so transport concerns stay out of business logic.
var (
	ErrNotFound = errors.New("resource not found")
	// ErrValidation covers missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateIdentity is returned when a username or email is already
	// registered. Deliberately a 400, not a 409: the original API contract
	// promises 400 here.
	ErrDuplicateIdentity = errors.New("email or username already registered")
	// ErrInvalidCredentials merges "unknown identifier" and "wrong password"
	// so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified gates login until the verification link is used.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrInvalidVerification means an email verification token matched no
	// pending user, either unknown or already consumed.
	ErrInvalidVerification = errors.New("invalid verification token")
	// ErrMissingToken means no session token was found in cookie or header.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers bad signatures, malformed blobs and expiry.
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	// ErrRateLimited is returned by the one-post-per-hour check.
	ErrRateLimited = errors.New("rate limited")
)

type taxonomyEntry struct {
	sentinel error
	status   int
	title    string
}

var taxonomy = []taxonomyEntry{
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrValidation, http.StatusBadRequest, "Validation Failed"},
	{ErrDuplicateIdentity, http.StatusBadRequest, "Already Registered"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid Credentials"},
	{ErrEmailNotVerified, http.StatusForbidden, "Email Not Verified"},
	{ErrInvalidVerification, http.StatusBadRequest, "Invalid Verification Token"},
	{ErrMissingToken, http.StatusUnauthorized, "Missing Token"},
	{ErrInvalidToken, http.StatusForbidden, "Invalid Or Expired Token"},
	{ErrForbidden, http.StatusForbidden, "Forbidden"},
	{ErrConflict, http.StatusConflict, "Conflict"},
	{ErrRateLimited, http.StatusTooManyRequests, "Rate Limited"},
}

// StatusFor returns the HTTP status an error maps to. Unknown errors are
// internal failures.
func StatusFor(err error) int {
	for _, entry := range taxonomy {
		if errors.Is(err, entry.sentinel) {
			return entry.status
		}
	}
	return http.StatusInternalServerError
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unknown errors become an opaque 500; their detail belongs in logs only.
func RespondError(w http.ResponseWriter, err error) {
	for _, entry := range taxonomy {
		if errors.Is(err, entry.sentinel) {
			Problem(w, entry.status, entry.title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
