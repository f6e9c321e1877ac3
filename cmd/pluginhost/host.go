package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/config"
	"github.com/platinummonkey/pluginhost/pkg/notifier"
	"github.com/platinummonkey/pluginhost/pkg/notifier/webhook"
	"github.com/platinummonkey/pluginhost/pkg/observability"
	"github.com/platinummonkey/pluginhost/pkg/plugins"
)

// app wires the notification hub and plugin manager for one process
type app struct {
	store   *config.Store
	hub     *notifier.Hub
	manager *plugins.Manager
}

func newApp(cfg *config.Config, log *logrus.Logger, metrics *observability.Metrics, opts ...plugins.ManagerOption) (*app, error) {
	backends := notifier.NewBackends()
	if err := backends.Register(notifier.BackendLog, notifier.NewLogDriver(log)); err != nil {
		return nil, err
	}

	if cfg.Notifications.Webhook.Enabled() {
		wcfg := webhook.DefaultConfig(cfg.Notifications.Webhook.URL)
		wcfg.Secret = cfg.Notifications.Webhook.Secret
		wcfg.Timeout = cfg.Notifications.Webhook.Timeout
		wcfg.MaxRetries = cfg.Notifications.Webhook.MaxRetries

		driver, err := webhook.New(wcfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook backend: %w", err)
		}
		if err := backends.Register(notifier.BackendWebhook, driver); err != nil {
			return nil, err
		}
	}

	store := config.NewStore(cfg)
	hub := notifier.NewHub(store, backends, notifier.WithLogger(log), notifier.WithMetrics(metrics))

	host := &plugins.Host{Notifications: hub, Log: log}
	opts = append([]plugins.ManagerOption{
		plugins.WithClassPaths(store),
		plugins.WithLogger(log),
		plugins.WithMetrics(metrics),
	}, opts...)

	return &app{
		store:   store,
		hub:     hub,
		manager: plugins.NewManager(host, opts...),
	}, nil
}

// healthChecker reports unhealthy until plugins are loaded and the
// aggregator is the active notification backend
func (a *app) healthChecker() *observability.HealthChecker {
	checker := observability.NewHealthChecker()
	checker.AddCheck("plugins", true, func(context.Context) error {
		if !a.manager.Loaded() {
			return fmt.Errorf("plugins not loaded")
		}
		return nil
	})
	checker.AddCheck("notifications", false, func(context.Context) error {
		if !a.hub.Installed() {
			return fmt.Errorf("notification aggregator is not the active backend (active: %s)", a.store.NotificationDriver())
		}
		return nil
	})
	return checker
}

// logRegistrar accepts every extension and logs it
type logRegistrar struct {
	log *logrus.Logger
}

func (r logRegistrar) LoadExtension(d plugins.ExtensionDescriptor) error {
	r.log.WithFields(logrus.Fields{
		"extension": d.Name(),
		"alias":     d.Alias(),
	}).Info("Loaded API extension")
	return nil
}
