package messages

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ripple-social/ripple/internal/auth"
	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Handler wires HTTP endpoints for direct messages. The router mounts the
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

// MountRoutes registers messaging routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/threads", h.handleThreads)
	r.Get("/{friendID}", h.handleConversation)
	r.Post("/send", h.handleSend)
}

type sendBody struct {
	ToUserID int64  `json:"to_user_id"`
	Content  string `json:"content"`
}

func (h *Handler) handleThreads(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	threads, err := h.service.ListThreads(r.Context(), identity.ID)
	if err != nil {
		h.respondServiceError(w, "list threads", err)
		return
	}
	httpx.JSON(w, http.StatusOK, threads)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	friendID, err := strconv.ParseInt(chi.URLParam(r, "friendID"), 10, 64)
	if err != nil || friendID <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: invalid friend id", httpx.ErrValidation))
		return
	}

	msgs, err := h.service.Conversation(r.Context(), identity.ID, friendID)
	if err != nil {
		h.respondServiceError(w, "list conversation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, msgs)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	var req sendBody
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", httpx.ErrValidation))
		return
	}

	msg, err := h.service.Send(r.Context(), identity.ID, req.ToUserID, req.Content)
	if err != nil {
		h.respondServiceError(w, "send message", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
