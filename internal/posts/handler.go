package posts

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ripple-social/ripple/internal/auth"
	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the feed. Reading is public; every
// mutation requires a session.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authn   *auth.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authn *auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, authn: authn}
}

// MountRoutes registers feed routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Group(func(r chi.Router) {
		r.Use(h.authn.Authenticate)
		r.Post("/", h.handleCreate)
		r.Put("/{postID}", h.handleUpdate)
		r.Delete("/{postID}", h.handleDelete)
		r.Post("/{postID}/comments", h.handleAddComment)
	})
}

type postRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(w, "list posts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, posts)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", httpx.ErrValidation))
		return
	}

	post, err := h.service.Create(r.Context(), identity.ID, req.Content)
	if err != nil {
		h.respondServiceError(w, "create post", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	postID, err := parseID(r, "postID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", httpx.ErrValidation))
		return
	}

	post, err := h.service.Update(r.Context(), identity.ID, postID, req.Content)
	if err != nil {
		h.respondServiceError(w, "update post", err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	postID, err := parseID(r, "postID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), identity.ID, postID); err != nil {
		h.respondServiceError(w, "delete post", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrMissingToken)
		return
	}
	postID, err := parseID(r, "postID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", httpx.ErrValidation))
		return
	}

	comment, err := h.service.AddComment(r.Context(), identity.ID, postID, req.Content)
	if err != nil {
		h.respondServiceError(w, "add comment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, comment)
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, param)
	}
	return id, nil
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
