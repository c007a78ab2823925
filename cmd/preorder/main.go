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
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"

	"github.com/campus-eats/preorder/internal/catalog"
	"github.com/campus-eats/preorder/internal/clock"
	"github.com/campus-eats/preorder/internal/config"
	"github.com/campus-eats/preorder/internal/messaging"
	"github.com/campus-eats/preorder/internal/ordering"
	"github.com/campus-eats/preorder/internal/session"
	"github.com/campus-eats/preorder/internal/slots"
	"github.com/campus-eats/preorder/internal/telemetry"
)

const serviceName = "preorder"

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTelEnabled {
		shutdownTracer, err := telemetry.InitTracing(ctx, cfg.OTelExporter, cfg.OTelEndpoint, os.Stderr, serviceName, cfg.ServiceVersion)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	if err := otelruntime.Start(otelruntime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

	engineMetrics, err := telemetry.NewEngineMetrics(otel.Meter(serviceName))
	if err != nil {
		logger.Error("failed to create engine metrics", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Default()
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	var resolver *slots.Resolver
	switch cfg.SlotMode {
	case config.SlotModeWindows:
		resolver = slots.NewWindowResolver(clock.NewSystem(), cfg.BlockedSlot)
	default:
		resolver = slots.NewResolver(slots.DefaultSlots, cfg.BlockedSlot)
	}

	var submitter slots.Submitter = resolver
	if cfg.SlotServiceURL != "" {
		httpClient := &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		submitter = slots.NewHTTPSubmitter(cfg.SlotServiceURL, httpClient)
		logger.Info("using remote slot service", "url", cfg.SlotServiceURL)
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithCandidateSlots(resolver.CandidateSlots),
		session.WithObserver(engineMetrics),
	}

	publisherDone := make(chan struct{})
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderTopic)
		defer func() { _ = producer.Close() }()

		publisher := messaging.NewOrderPublisher(producer, 64, logger)
		opts = append(opts, session.WithObserver(publisher))
		go func() {
			defer close(publisherDone)
			publisher.Run(ctx)
		}()
	} else {
		close(publisherDone)
	}

	store := session.New(submitter, opts...)
	handler := ordering.NewHandler(store, cat, logger)

	mux := http.NewServeMux()
	handler.Register(mux, telemetry.WithHTTPRoute)
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting preorder service", "port", cfg.Port, "slot_mode", cfg.SlotMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	cancel()
	<-publisherDone
}
