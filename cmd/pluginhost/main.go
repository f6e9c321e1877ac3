package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/pluginhost/pkg/config"
	"github.com/platinummonkey/pluginhost/pkg/notifier"
	"github.com/platinummonkey/pluginhost/pkg/observability"
	_ "github.com/platinummonkey/pluginhost/pkg/plugins/builtin/eventlog"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (environment only when empty)")
	serviceName := flag.String("service", "", "Service name passed to plugins (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *serviceName != "" {
		cfg.ServiceName = *serviceName
	}

	logger := observability.NewLogger(cfg.LogLevel(), os.Stdout)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	a, err := newApp(cfg, logger, metrics)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize plugin host")
	}

	loaded, err := a.manager.Load(cfg.ServiceName)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load plugins")
	}
	logger.WithField("count", len(loaded)).Info("Plugins ready")

	if err := a.manager.ExtensionFactory(logRegistrar{log: logger}); err != nil {
		logger.WithError(err).Fatal("Failed to register API extensions")
	}

	ctx := context.Background()
	if err := a.hub.Notify(ctx, "", "service.start", notifier.PriorityInfo, map[string]interface{}{
		"service": cfg.ServiceName,
		"plugins": len(loaded),
	}); err != nil {
		logger.WithError(err).Error("Failed to send start notification")
	}

	if !cfg.Observability.MetricsEnabled {
		return
	}

	mux := http.NewServeMux()
	observability.RegisterMetricsEndpoint(mux, registry)
	observability.RegisterHealthRoutes(mux, a.healthChecker())
	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Metrics server failed")
		}
	}()

	shutdown := observability.NewShutdownManager(logger, server, 10*time.Second)

	if *configPath != "" {
		watchCtx, stopWatch := context.WithCancel(ctx)
		watcher := config.NewWatcher(*configPath, a.store, logger)
		watcher.OnReload(func(next *config.Config) {
			logger.SetLevel(observability.ParseLogLevel(next.Observability.LogLevel).Logrus())
		})
		go func() {
			if err := watcher.Run(watchCtx); err != nil {
				logger.WithError(err).Warn("Config watcher stopped")
			}
		}()
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			stopWatch()
			return nil
		})
	}

	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return a.hub.Notify(ctx, "", "service.stop", notifier.PriorityInfo, map[string]interface{}{
			"service": cfg.ServiceName,
		})
	})
	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown failed")
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadConfig()
	}
	return config.LoadFile(path)
}
