package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/observability"
)

// BackendSwitch is the configuration cell naming the active backend
type BackendSwitch interface {
	NotificationDriver() string
	SetNotificationDriver(name string)
}

// publisherDefaults is optionally implemented by a BackendSwitch
type publisherDefaults interface {
	DefaultPublisherID() string
}

// Hub owns the backend table and the aggregator, and routes host
// notifications to whichever backend is active.
type Hub struct {
	mu         sync.Mutex
	settings   BackendSwitch
	backends   *Backends
	aggregator *Aggregator
	log        *logrus.Logger
	metrics    *observability.Metrics
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithLogger sets the hub and aggregator logger
func WithLogger(log *logrus.Logger) HubOption {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// WithMetrics sets the hub and aggregator metrics
func WithMetrics(metrics *observability.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = metrics
	}
}

// NewHub creates a hub and registers its aggregator as the list backend.
// A nil backends table gets a fresh one.
func NewHub(settings BackendSwitch, backends *Backends, opts ...HubOption) *Hub {
	if backends == nil {
		backends = NewBackends()
	}

	h := &Hub{
		settings: settings,
		backends: backends,
		log:      logrus.New(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.aggregator = NewAggregator(h.log, h.metrics)
	h.backends.set(BackendList, h.aggregator)
	return h
}

// Aggregator returns the hub's aggregator
func (h *Hub) Aggregator() *Aggregator {
	return h.aggregator
}

// Backends returns the hub's backend table
func (h *Hub) Backends() *Backends {
	return h.backends
}

// Installed reports whether the aggregator is the active backend
func (h *Hub) Installed() bool {
	return h.settings.NotificationDriver() == BackendList
}

// Install makes the aggregator the active backend. A previously active
// backend is kept as a driver of the aggregator so its delivery continues.
// Install is idempotent: once the aggregator is active it does nothing. If the
// active backend cannot be resolved nothing is switched.
func (h *Hub) Install() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.settings.NotificationDriver()
	if current == BackendList {
		return nil
	}

	if current != "" {
		previous, err := h.backends.Get(current)
		if err != nil {
			return fmt.Errorf("failed to install notification aggregator: %w", err)
		}
		if previous != Driver(h.aggregator) {
			h.aggregator.AddDriver(previous)
			h.log.WithField("backend", current).Info("Preserving previous notification backend in aggregator")
		}
	}

	h.settings.SetNotificationDriver(BackendList)
	return nil
}

// Notify builds a message and sends it to the active backend. An empty
// publisherID falls back to the configured default publisher.
func (h *Hub) Notify(ctx context.Context, publisherID, eventType string, priority Priority, payload map[string]interface{}) error {
	if publisherID == "" {
		if defaults, ok := h.settings.(publisherDefaults); ok {
			publisherID = defaults.DefaultPublisherID()
		}
	}

	msg, err := NewMessage(publisherID, eventType, priority, payload)
	if err != nil {
		return err
	}
	return h.Send(ctx, msg)
}

// Send delivers msg to the active backend. An unknown backend is an error; a
// failure inside the backend is logged and not returned.
func (h *Hub) Send(ctx context.Context, msg Message) error {
	name := h.settings.NotificationDriver()
	if name == "" {
		name = BackendNoop
	}

	backend, err := h.backends.Get(name)
	if err != nil {
		return err
	}

	err = safeNotify(ctx, backend, msg)
	if backend != Driver(h.aggregator) {
		h.metrics.RecordNotification(name, err)
	}
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"backend":    name,
			"event_type": msg.EventType,
			"message_id": msg.ID,
		}).Error("Problem sending notification")
	}
	return nil
}
