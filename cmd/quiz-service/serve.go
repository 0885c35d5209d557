package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swipe-quiz/internal/config"
	"swipe-quiz/internal/httpapi"
	"swipe-quiz/internal/metrics"
	"swipe-quiz/internal/quiz"
	"swipe-quiz/internal/quiz/sqlite"
	"swipe-quiz/internal/sessionstore"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deck, err := quiz.LoadDeck(cfg.Deck.Path)
	if err != nil {
		return err
	}

	sessions, closeSessions, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	options := []quiz.Option{
		quiz.WithLogger(logger),
		quiz.WithObserver(m),
		quiz.WithPersistPolicy(cfg.PersistPolicy()),
	}
	if cfg.Datastore.Enabled {
		store, err := sqlite.NewSQLiteStore(cfg.Datastore.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		options = append(options, quiz.WithLeadRepository(store))
	} else {
		logger.Warn("lead datastore disabled; contact forms are kept in the session store only")
	}

	service := quiz.NewService(deck, sessions, options...)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(service, httpapi.Options{
			Logger:         logger,
			Metrics:        m,
			EnableCORS:     cfg.Server.EnableCORS,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}),
		ReadHeaderTimeout: cfg.GetReadHeaderTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("quiz-service listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("deck", deck.Name),
			zap.String("sessions", cfg.Sessions.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := service.Close(shutdownCtx); err != nil {
		logger.Warn("pending lead writes abandoned", zap.Error(err))
	}
	return nil
}

// openSessionStore builds the configured session store. The redis driver is
// pinged with backoff so the service does not start against a dead server.
func openSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (quiz.SessionStore, func(), error) {
	if cfg.Sessions.Driver != "redis" {
		return sessionstore.NewMemoryStore(cfg.Sessions.MemorySize, cfg.GetSessionTTL()), func() {}, nil
	}

	store := sessionstore.NewRedisStore(sessionstore.RedisOptions{
		Address:   cfg.Sessions.Redis.Addr,
		Password:  cfg.Sessions.Redis.Password,
		DB:        cfg.Sessions.Redis.DB,
		KeyPrefix: cfg.Sessions.Redis.KeyPrefix,
		TTL:       cfg.GetSessionTTL(),
	})

	backoff := retry.WithMaxRetries(4, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			logger.Warn("redis not reachable yet", zap.String("addr", cfg.Sessions.Redis.Addr), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Sessions.Redis.Addr, err)
	}

	return store, func() { _ = store.Close() }, nil
}
