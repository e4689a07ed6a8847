package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/engine/delivery"
	"webhooksandbox/internal/engine/notifications"
	"webhooksandbox/internal/pkg/logger"
	"webhooksandbox/internal/pkg/metrics"
	"webhooksandbox/internal/platform/config"
	"webhooksandbox/internal/platform/credentials"
	"webhooksandbox/internal/platform/database"
	"webhooksandbox/internal/platform/repositories"
	"webhooksandbox/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, ".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)
	log.Info().Msg("starting sandbox background workers")

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	keys, err := credentials.Resolve(cfg.Gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve gateway credentials")
	}

	endpointRepo := repositories.NewEndpointRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)
	gateway := notifications.NewTestingGateway(keys)
	dispatcher := delivery.NewDispatcher(endpointRepo, deliveryRepo, gateway, cfg.Delivery.Timeout, metrics.New())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	_, err = c.AddFunc(cfg.Delivery.RetrySchedule, func() {
		if _, err := workers.RetryFailedDeliveries(ctx, deliveryRepo, dispatcher, cfg.Delivery.MaxAttempts); err != nil {
			log.Error().Err(err).Msg("error retrying deliveries")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Delivery.RetrySchedule).Msg("invalid retry schedule")
	}

	c.Start()
	log.Info().Str("schedule", cfg.Delivery.RetrySchedule).Msg("delivery retry worker scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("workers stopped")
}
