package friends

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ripple-social/ripple/internal/auth"
	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Handler wires HTTP endpoints for friendships. The router mounts the
// whole group behind the session middleware.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers friendship routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/requests", h.handleListRequests)
	r.Post("/request", h.handleSendRequest)
	r.Post("/accept", h.handleAccept)
}

type sendRequestBody struct {
	ToUsername string `json:"to_username"`
}

type acceptRequestBody struct {
	RequestID int64 `json:"request_id"`
}

func (h *Handler) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	var req sendRequestBody
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", httpx.ErrValidation))
		return
	}

	request, err := h.service.SendRequest(r.Context(), identity.ID, req.ToUsername)
	if err != nil {
		h.respondServiceError(w, "send friend request", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, request)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	var req acceptRequestBody
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RequestID <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: request_id is required", httpx.ErrValidation))
		return
	}

	if err := h.service.AcceptRequest(r.Context(), identity.ID, req.RequestID); err != nil {
		h.respondServiceError(w, "accept friend request", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	requests, err := h.service.ListIncoming(r.Context(), identity.ID)
	if err != nil {
		h.respondServiceError(w, "list friend requests", err)
		return
	}
	httpx.JSON(w, http.StatusOK, requests)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	friendList, err := h.service.ListFriends(r.Context(), identity.ID)
	if err != nil {
		h.respondServiceError(w, "list friends", err)
		return
	}
	httpx.JSON(w, http.StatusOK, friendList)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
