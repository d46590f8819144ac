package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gearguard/internal/config"
	"gearguard/internal/handler"
	"gearguard/internal/metrics"
	"gearguard/internal/notification"
	"gearguard/internal/repository"
	"gearguard/internal/router"
	"gearguard/internal/service"
	notificationAdapter "gearguard/internal/service/notification"
	"gearguard/pkg/logger"
)

var version = "dev"

var CLI struct {
	EnvFile string           `help:"Environment file loaded before reading configuration" default:".env" type:"path"`
	Port    int              `short:"p" help:"Override the API port (PORT)"`
	NoSeed  bool             `help:"Start with an empty store instead of the demo data"`
	Version kong.VersionFlag `help:"Print version and exit"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("gearguard"),
		kong.Description("Equipment maintenance tracker API"),
		kong.Vars{"version": version},
	)

	if err := godotenv.Load(CLI.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", CLI.EnvFile, err)
		os.Exit(1)
	}

	// Flags win over the environment and still go through validation
	if CLI.Port != 0 {
		os.Setenv("PORT", strconv.Itoa(CLI.Port))
	}
	if CLI.NoSeed {
		os.Setenv("SEED_DEMO_DATA", "false")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	store := repository.NewMemStore()
	if cfg.SeedDemoData && repository.Seed(store, time.Now()) {
		counts := store.Counts()
		log.Info("Seeded demo data",
			zap.Int("equipment", counts.Equipment),
			zap.Int("requests", counts.Requests))
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewRecorder(registry)
	metrics.RegisterStoreGauges(registry, store)
	metrics.RegisterRuntimeCollectors(registry)

	notifier := notification.NewNotifierWithConfig(notification.NotificationConfig{
		URL:            cfg.NotificationService.URL,
		Timeout:        cfg.NotificationService.Timeout,
		RetryAttempts:  cfg.NotificationService.RetryAttempts,
		RetryDelay:     cfg.NotificationService.RetryDelay,
		MaxPayloadSize: cfg.NotificationService.MaxPayloadSize,
	}, log.Named("notifier"))
	if cfg.NotificationService.URL == "" {
		log.Info("Notification webhook not configured; events are dropped")
	}

	svc := service.NewMaintenanceService(store, notificationAdapter.NewServiceAdapter(notifier), recorder, log.Named("service"),
		service.WithNotifyTimeout(cfg.NotificationService.Timeout))
	h := handler.NewMaintenanceHandler(svc, log.Named("handler"))

	server := &http.Server{
		Addr:           cfg.Address(),
		Handler:        router.NewRouter(h, cfg, log.Named("http"), recorder),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	var metricsServer *http.Server
	if cfg.Server.EnableMetrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(registry))
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddress(),
			Handler:           mux,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
		}
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.Int("rate_limit_rps", cfg.Security.RateLimitRPS),
			zap.Int("rate_limit_burst", cfg.Security.RateLimitBurst),
			zap.Bool("cors", cfg.Security.EnableCORS),
			zap.Duration("request_timeout", cfg.Security.RequestTimeout))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	if metricsServer != nil {
		go func() {
			log.Info("Starting metrics server", zap.String("addr", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-done:
		log.Info("Server is shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		log.Error("Server failed, shutting down", zap.Error(runErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warn("Server forced to shutdown", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Warn("Metrics server forced to shutdown", zap.Error(err))
		}
	}
	if err := svc.Drain(ctx); err != nil {
		log.Warn("Pending notifications abandoned", zap.Error(err))
	}

	log.Info("Server exited")
	return runErr
}
