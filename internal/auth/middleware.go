package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Middleware authenticates inbound requests from their session token. The
// identity is trusted straight from the signed claims, with no store round
// trip; claim data may go stale relative to the user row until next login.
type Middleware struct {
	codec      *Codec
	cookieName string
	logger     *slog.Logger
}

// NewMiddleware constructs the session middleware.
func NewMiddleware(codec *Codec, cookieName string, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{codec: codec, cookieName: cookieName, logger: logger}
}

// Authenticate rejects requests without a valid token and attaches the
// resolved identity to the request context otherwise.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r, m.cookieName)
		if token == "" {
			httpx.RespondError(w, httpx.ErrMissingToken)
			return
		}

		identity, err := m.codec.Verify(token)
		if err != nil {
			// Expired and tampered tokens get the same response; the logs
			// keep them apart.
			if errors.Is(err, ErrTokenExpired) {
				m.logger.Debug("reject expired token", slog.String("path", r.URL.Path))
			} else {
				m.logger.Debug("reject invalid token", slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, httpx.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// extractToken prefers the session cookie and falls back to a bearer header.
func extractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
