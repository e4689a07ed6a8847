package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/api"
	"webhooksandbox/internal/api/handlers"
	"webhooksandbox/internal/api/middleware"
	"webhooksandbox/internal/engine/delivery"
	"webhooksandbox/internal/engine/notifications"
	"webhooksandbox/internal/pkg/logger"
	"webhooksandbox/internal/pkg/metrics"
	"webhooksandbox/internal/platform/audit"
	"webhooksandbox/internal/platform/auth"
	"webhooksandbox/internal/platform/config"
	"webhooksandbox/internal/platform/credentials"
	"webhooksandbox/internal/platform/database"
	"webhooksandbox/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, ".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	keys, err := credentials.Resolve(cfg.Gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve gateway credentials")
	}
	if keys.PrivateKey == "" {
		log.Warn().Msg("no private key configured, sample signatures will not verify")
	}

	// Repositories
	endpointRepo := repositories.NewEndpointRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)

	// Services
	m := metrics.New()
	gateway := notifications.NewTestingGateway(keys)
	dispatcher := delivery.NewDispatcher(endpointRepo, deliveryRepo, gateway, cfg.Delivery.Timeout, m)
	tokenSvc := auth.NewTokenService(cfg.Auth)
	auditLog := audit.NewLogger(db)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.SamplesPerMinute)

	router := api.NewRouter(&api.Dependencies{
		AuthHandler:     handlers.NewAuthHandler(tokenSvc, cfg.Auth, cfg.Gateway),
		SampleHandler:   handlers.NewSampleHandler(gateway, dispatcher, m, auditLog),
		EndpointHandler: handlers.NewEndpointHandler(endpointRepo, deliveryRepo, auditLog),
		AuditHandler:    handlers.NewAuditHandler(auditLog),
		HealthHandler:   handlers.NewHealthHandler(db),
		MetricsHandler:  handlers.NewMetricsHandler(m),
		AuthMiddleware:  middleware.NewAuthMiddleware(tokenSvc, cfg.Gateway.Environment),
		RateLimiter:     rateLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rateLimiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("environment", cfg.Gateway.Environment).Msg("sandbox server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("sandbox server stopped")
}
