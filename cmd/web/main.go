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

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/puzzo-dev/sitefront/internal/app"
	"github.com/puzzo-dev/sitefront/internal/config"
	"github.com/puzzo-dev/sitefront/internal/handlers"
	"github.com/puzzo-dev/sitefront/internal/middleware"
	"github.com/puzzo-dev/sitefront/internal/observability"
	"github.com/puzzo-dev/sitefront/internal/prefs"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")

	cfg, err := config.Load()
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			logger.Fatal("invalid configuration", zap.Strings("fields", verr.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise services", zap.Error(err))
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("close services", zap.Error(err))
		}
	}()

	codec, err := prefs.NewCookieCodec(cookieConfig(cfg.Cookie, logger))
	if err != nil {
		logger.Fatal("failed to initialise preference cookies", zap.Error(err))
	}

	h := handlers.New(handlers.Deps{
		Catalog:  services.Catalog,
		Derived:  services.Derived,
		Composer: services.Composer,
		Nav:      services.Nav,
		Bundle:   services.Bundle,
		Forms:    services.Forms,
		Logger:   logger.Named("http"),
	})

	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that overwrites it.
	r.Use(chiMid.RealIP)
	r.Use(middleware.Logger(logger.Named("http")))
	r.Use(chiMid.Recoverer)
	r.Use(chiMid.Compress(5))
	r.Use(chiMid.Timeout(requestTimeout))
	r.Use(middleware.Preferences(codec))
	r.Use(middleware.Locale(services.Bundle))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	h.Routes(r)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("web listening", zap.Bool("cms", services.CMS.Configured()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// cookieConfig converts configured keys. Without a hash key a random one is generated, so
// preferences do not survive a restart.
func cookieConfig(cfg config.CookieConfig, logger *zap.Logger) prefs.CookieConfig {
	out := prefs.CookieConfig{
		HashKey: []byte(cfg.HashKey),
		Secure:  cfg.Secure,
	}
	if cfg.BlockKey != "" {
		out.BlockKey = []byte(cfg.BlockKey)
	}
	if len(out.HashKey) == 0 {
		logger.Warn("SITE_COOKIE_HASH_KEY not set; using an ephemeral key")
		out.HashKey = prefs.RandomKey()
	}
	return out
}
