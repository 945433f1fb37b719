package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academy/config"
	"academy/internal/database"
	"academy/internal/logging"
	"academy/internal/router"
	"academy/internal/ws"
	"academy/pkg/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("database")
	}
	if err := database.AutoMigrate(db); err != nil {
		logging.Fatal().Err(err).Msg("migrate")
	}

	provider := newProvider(cfg.Payment)
	hub := ws.NewHub()

	engine := router.Setup(cfg, db, provider, hub)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logging.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen")
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Fatal().Err(err).Msg("server shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logging.Info().Msg("server stopped")
}

// newProvider returns nil when the configured processor cannot be built, so the server still
// starts and serves balances and enrollments.
func newProvider(cfg config.PaymentConfig) payment.Provider {
	var next payment.Provider
	switch cfg.Provider {
	case "stripe":
		p, err := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.WebhookSecret)
		if err != nil {
			logging.Error().Err(err).Msg("stripe disabled: set STRIPE_SECRET_KEY to enable token purchases")
			return nil
		}
		if cfg.WebhookSecret == "" {
			logging.Warn().Msg("STRIPE_WEBHOOK_SECRET not set: webhooks are rejected, redirect verification still works")
		}
		next = p
	default:
		logging.Warn().Msg("using stub payment processor")
		next = payment.NewStubProvider(cfg.WebhookSecret)
	}
	return payment.NewBreakerProvider(next, payment.BreakerConfig{
		Failures:    cfg.BreakerFailures,
		OpenTimeout: cfg.BreakerTimeout,
		CallTimeout: cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
	})
}
