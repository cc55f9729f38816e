package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// LoginMetrics counts login outcomes. Satisfied by observability.Metrics.
type LoginMetrics interface {
	RecordLogin(outcome string)
}

// Handler wires HTTP endpoints for authentication flows. Cookie transport
// lives here; the service below it only deals in tokens.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	codec         *Codec
	cookieName    string
	secureCookies bool
	validator     *validator.Validate
	metrics       LoginMetrics
}

// NewHandler constructs a Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, codec *Codec, cookieName string, secureCookies bool, metrics LoginMetrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:        logger,
		service:       service,
		codec:         codec,
		cookieName:    cookieName,
		secureCookies: secureCookies,
		validator:     validator.New(),
		metrics:       metrics,
	}
}

func (h *Handler) recordLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(outcome)
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/verify", h.handleVerify)
	r.Get("/check", h.handleCheck)
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required"`
}

// identifier accepts the explicit field and falls back to the legacy
// username/email pair older clients still send.
func (req loginRequest) identifier() string {
	if req.Identifier != "" {
		return req.Identifier
	}
	if req.Username != "" {
		return req.Username
	}
	return req.Email
}

type userPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: username, email and password are required", httpx.ErrValidation))
		return
	}

	if err := h.service.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		h.respondServiceError(w, "register", err)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", httpx.ErrValidation))
		return
	}
	if req.identifier() == "" || req.Password == "" {
		httpx.RespondError(w, fmt.Errorf("%w: username/email and password required", httpx.ErrValidation))
		return
	}

	result, err := h.service.Login(r.Context(), req.identifier(), req.Password)
	if err != nil {
		h.recordLogin("failure")
		h.respondServiceError(w, "login", err)
		return
	}

	h.recordLogin("success")
	h.setSessionCookie(w, result.Token)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userPayload{Username: result.User.Username, Email: result.User.Email},
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		h.respondServiceError(w, "verify email", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleCheck reports token state without rejecting the request; browser
// clients poll it to decide whether to show the login screen.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r, h.cookieName)
	if token == "" {
		httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	identity, err := h.codec.Verify(token)
	if err != nil {
		httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": identity})
}

// handleLogout clears the cookie. The token itself stays valid until its
// TTL elapses; there is no server-side session to destroy.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.codec.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// respondServiceError logs store-level failures with detail and lets the
// taxonomy mapping produce the client-safe response.
func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
