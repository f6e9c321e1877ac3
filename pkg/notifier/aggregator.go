package notifier

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/observability"
)

// Aggregator is the notification backend that forwards every message to an
// ordered list of drivers. Duplicates are allowed; insertion order is delivery
// order.
type Aggregator struct {
	mu      sync.RWMutex
	drivers []Driver
	log     *logrus.Logger
	metrics *observability.Metrics
}

// NewAggregator creates an empty aggregator. Both arguments may be nil.
func NewAggregator(log *logrus.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		log:     observability.OrDefault(log),
		metrics: metrics,
	}
}

// Name implements Named
func (a *Aggregator) Name() string {
	return BackendList
}

// AddDriver appends d to the driver list
func (a *Aggregator) AddDriver(d Driver) {
	if d == nil {
		return
	}

	a.mu.Lock()
	a.drivers = append(a.drivers, d)
	n := len(a.drivers)
	a.mu.Unlock()

	a.metrics.SetNotifierDrivers(n)
}

// RemoveDriver removes the first entry matching d. It reports whether an entry
// was removed; removing an absent driver is a no-op.
func (a *Aggregator) RemoveDriver(d Driver) bool {
	removed, n := a.remove(d)
	if removed {
		a.metrics.SetNotifierDrivers(n)
	}
	return removed
}

func (a *Aggregator) remove(d Driver) (bool, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, existing := range a.drivers {
		if SameDriver(existing, d) {
			a.drivers = append(a.drivers[:i:i], a.drivers[i+1:]...)
			return true, len(a.drivers)
		}
	}
	return false, len(a.drivers)
}

// Drivers returns a snapshot of the driver list
func (a *Aggregator) Drivers() []Driver {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Driver(nil), a.drivers...)
}

// Len returns the number of registered drivers
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.drivers)
}

// Reset drops every driver. Intended for test isolation.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.drivers = nil
	a.mu.Unlock()

	a.metrics.SetNotifierDrivers(0)
}

// Notify delivers msg to every driver in order. Driver failures are logged and
// never stop delivery to the remaining drivers; Notify always returns nil.
// Delivery runs on a snapshot, so drivers may add or remove drivers while
// being notified.
func (a *Aggregator) Notify(ctx context.Context, msg Message) error {
	for _, d := range a.Drivers() {
		err := safeNotify(ctx, d, msg)
		name := driverName(d)
		a.metrics.RecordNotification(name, err)
		if err != nil {
			a.log.WithError(err).WithFields(logrus.Fields{
				"driver":     name,
				"event_type": msg.EventType,
				"message_id": msg.ID,
			}).Error("Problem sending notification")
		}
	}
	return nil
}

// safeNotify calls d.Notify, turning a panic into an error
func safeNotify(ctx context.Context, d Driver, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("driver %s panicked: %v\n%s", driverName(d), r, debug.Stack())
		}
	}()
	return d.Notify(ctx, msg)
}

// SameDriver reports whether a and b are the same driver. Drivers whose
// dynamic values cannot be compared, such as a DriverFunc or a struct holding
// a slice in an interface field, are never the same as anything.
func SameDriver(a, b Driver) (same bool) {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}

	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
