package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ripple-social/ripple/internal/app"
	"github.com/ripple-social/ripple/internal/auth"
	"github.com/ripple-social/ripple/internal/friends"
	"github.com/ripple-social/ripple/internal/messages"
	"github.com/ripple-social/ripple/internal/observability"
	"github.com/ripple-social/ripple/internal/platform/cache"
	"github.com/ripple-social/ripple/internal/platform/db"
	"github.com/ripple-social/ripple/internal/posts"
	"github.com/ripple-social/ripple/internal/users"
	"github.com/ripple-social/ripple/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, feed cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mailQueue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailQueue.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	codec := auth.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	authMiddleware := auth.NewMiddleware(codec, cfg.SessionCookie, logger)

	authRepo := auth.NewRepository(dbpool)
	hasher := auth.NewHasher(cfg.BcryptCost)
	authService := auth.NewService(authRepo, hasher, codec, mailQueue, logger)
	authHandler := auth.NewHandler(logger, authService, codec, cfg.SessionCookie, cfg.IsProduction(), metrics)

	postsRepo := posts.NewRepository(dbpool)
	feedCache := posts.NewCache(redisClient, cfg.FeedCacheTTL)
	postsService := posts.NewService(postsRepo, feedCache, logger)
	postsHandler := posts.NewHandler(logger, postsService, authMiddleware)

	friendsRepo := friends.NewRepository(dbpool)
	friendsService := friends.NewService(friendsRepo, logger)
	friendsHandler := friends.NewHandler(logger, friendsService)

	messagesRepo := messages.NewRepository(dbpool)
	messagesService := messages.NewService(messagesRepo, logger)
	messagesHandler := messages.NewHandler(logger, messagesService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		PostsHandler:    postsHandler,
		FriendsHandler:  friendsHandler,
		MessagesHandler: messagesHandler,
		UsersHandler:    usersHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
