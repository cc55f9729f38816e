package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ripple-social/ripple/internal/auth"
	"github.com/ripple-social/ripple/internal/friends"
	"github.com/ripple-social/ripple/internal/messages"
	"github.com/ripple-social/ripple/internal/observability"
	"github.com/ripple-social/ripple/internal/posts"
	"github.com/ripple-social/ripple/internal/users"
	"github.com/ripple-social/ripple/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	AuthMiddleware  *auth.Middleware
	PostsHandler    *posts.Handler
	FriendsHandler  *friends.Handler
	MessagesHandler *messages.Handler
	UsersHandler    *users.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Ripple defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","api":"ripple"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/posts", params.PostsHandler.MountRoutes)

	r.Route("/friends", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)
		params.FriendsHandler.MountRoutes(r)
	})
	r.Route("/messages", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)
		params.MessagesHandler.MountRoutes(r)
	})
	r.Route("/users", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)
		params.UsersHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
