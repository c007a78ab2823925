package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-eats/preorder/internal/config"
	"github.com/campus-eats/preorder/internal/kitchen"
	"github.com/campus-eats/preorder/internal/messaging"
	"github.com/campus-eats/preorder/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := config.LoadEnvFile(".env"); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTelEnabled {
		shutdownTracer, err := telemetry.InitTracing(ctx, cfg.OTelExporter, cfg.OTelEndpoint, os.Stderr, "kitchen", cfg.ServiceVersion)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.OrderTopic, cfg.KitchenGroupID, messaging.WithConsumerLogger(logger))
	defer func() { _ = consumer.Close() }()

	// Tickets go to stdout, logs to stderr.
	tickets := kitchen.NewTicketHandler(cfg.KitchenVendor, os.Stdout, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting kitchen consumer", "brokers", cfg.KafkaBrokers, "topic", cfg.OrderTopic, "vendor_id", cfg.KitchenVendor)

	if err := consumer.Consume(ctx, tickets.Handle); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
