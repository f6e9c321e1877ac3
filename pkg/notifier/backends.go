package notifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/observability"
)

// Well-known backend names
const (
	BackendNoop    = "noop"
	BackendLog     = "log"
	BackendList    = "list"
	BackendWebhook = "webhook"
)

// ErrUnknownBackend is returned when a backend name has no registered driver
var ErrUnknownBackend = errors.New("unknown notification backend")

// Backends maps backend names to drivers
type Backends struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewBackends creates a backend table holding the noop backend
func NewBackends() *Backends {
	return &Backends{
		drivers: map[string]Driver{
			BackendNoop: NoopDriver{},
		},
	}
}

// Register adds a named backend
func (b *Backends) Register(name string, d Driver) error {
	if name == "" {
		return fmt.Errorf("backend name is required")
	}
	if d == nil {
		return fmt.Errorf("cannot register nil driver for backend %s", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.drivers[name]; exists {
		return fmt.Errorf("backend already registered: %s", name)
	}
	b.drivers[name] = d
	return nil
}

// set registers or replaces a backend
func (b *Backends) set(name string, d Driver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drivers[name] = d
}

// Get returns the driver registered under name
func (b *Backends) Get(name string) (Driver, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	d, exists := b.drivers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return d, nil
}

// Names returns the registered backend names, sorted
func (b *Backends) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.drivers))
	for name := range b.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NoopDriver discards every message
type NoopDriver struct{}

// Name implements Named
func (NoopDriver) Name() string { return BackendNoop }

// Notify implements Driver
func (NoopDriver) Notify(context.Context, Message) error { return nil }

// LogDriver writes every message as a structured log entry
type LogDriver struct {
	log *logrus.Logger
}

// NewLogDriver creates a log backend writing to log (logrus default when nil)
func NewLogDriver(log *logrus.Logger) *LogDriver {
	return &LogDriver{log: observability.OrDefault(log)}
}

// Name implements Named
func (d *LogDriver) Name() string { return BackendLog }

// Notify implements Driver
func (d *LogDriver) Notify(_ context.Context, msg Message) error {
	entry := d.log.WithFields(logrus.Fields{
		"message_id":   msg.ID,
		"publisher_id": msg.PublisherID,
		"event_type":   msg.EventType,
		"priority":     string(msg.Priority),
		"payload":      msg.Payload,
	})

	switch msg.Priority {
	case PriorityDebug:
		entry.Debug("Notification")
	case PriorityWarn:
		entry.Warn("Notification")
	case PriorityError, PriorityCritical:
		entry.Error("Notification")
	default:
		entry.Info("Notification")
	}
	return nil
}
