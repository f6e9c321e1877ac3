// Package observability provides structured logging, Prometheus metrics, health
// checks and graceful shutdown for the plugin host.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("plugin", name).Info("Loaded plugin")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RecordPluginLoad(observability.SourceRegistry, err)
//
// A nil *Metrics records nothing, so components accept it unconditionally.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker()
//	checker.AddCheck("plugins", true, func(ctx context.Context) error { ... })
//	observability.RegisterHealthRoutes(mux, checker)
//
// # Graceful Shutdown
//
//	sm := observability.NewShutdownManager(logger, server, 10*time.Second)
//	sm.RegisterShutdownFunc(flush)
//	err := sm.WaitForShutdown()
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/plugins: Plugin load metrics
//   - pkg/notifier: Notification delivery metrics
package observability
