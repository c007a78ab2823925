package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/campus-eats/preorder/internal/clock"
	"github.com/campus-eats/preorder/internal/config"
	"github.com/campus-eats/preorder/internal/slots"
	"github.com/campus-eats/preorder/internal/slotservice"
	"github.com/campus-eats/preorder/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadEnvFile(".env"); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.OTelEnabled {
		shutdownTracer, err := telemetry.InitTracing(context.Background(), cfg.OTelExporter, cfg.OTelEndpoint, os.Stderr, "slotservice", cfg.ServiceVersion)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	labels := slots.DefaultSlots
	if cfg.SlotMode == config.SlotModeWindows {
		labels = slots.GenerateWindows(clock.NewSystem().Now())
	}
	book := slotservice.NewBook(labels, cfg.SlotCapacity, cfg.BlockedSlot)
	handler := slotservice.NewHandler(book, logger)

	mux := http.NewServeMux()
	handler.Register(mux, telemetry.WithHTTPRoute)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(mux, "slotservice"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting slot service", "port", cfg.Port, "slots", len(book.List()), "capacity", cfg.SlotCapacity)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
