package plugins

import (
	"fmt"
	"sync"

	"github.com/platinummonkey/pluginhost/pkg/notifier"
)

// Base is the reference Plugin implementation. Concrete plugins embed *Base
// and override OnServiceLoad when they need to know which service loaded them.
type Base struct {
	hub         *notifier.Hub
	descriptors []ExtensionDescriptor

	mu        sync.Mutex
	notifiers []notifier.Driver
}

// NewBase installs the notification aggregator as the active backend and
// registers drivers with it. Descriptors are copied and never change.
func NewBase(host *Host, descriptors []ExtensionDescriptor, drivers ...notifier.Driver) (*Base, error) {
	if host == nil || host.Notifications == nil {
		return nil, fmt.Errorf("plugin host has no notification hub")
	}

	if err := host.Notifications.Install(); err != nil {
		return nil, err
	}

	b := &Base{
		hub:         host.Notifications,
		descriptors: append([]ExtensionDescriptor(nil), descriptors...),
	}
	for _, d := range drivers {
		b.AddNotifier(d)
	}
	return b, nil
}

// APIExtensionDescriptors returns the descriptors set at construction
func (b *Base) APIExtensionDescriptors() []ExtensionDescriptor {
	return append([]ExtensionDescriptor(nil), b.descriptors...)
}

// OnServiceLoad does nothing
func (b *Base) OnServiceLoad(serviceName string) error {
	return nil
}

// AddNotifier adds d to this plugin and to the aggregator
func (b *Base) AddNotifier(d notifier.Driver) {
	if d == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.notifiers = append(b.notifiers, d)
	b.hub.Aggregator().AddDriver(d)
}

// RemoveNotifier removes d from this plugin and from the aggregator. A driver
// this plugin did not add yields ErrNotifierNotRegistered and nothing changes.
func (b *Base) RemoveNotifier(d notifier.Driver) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.notifiers {
		if notifier.SameDriver(existing, d) {
			b.notifiers = append(b.notifiers[:i:i], b.notifiers[i+1:]...)
			b.hub.Aggregator().RemoveDriver(d)
			return nil
		}
	}
	return fmt.Errorf("%w: %T", ErrNotifierNotRegistered, d)
}

// Notifiers returns the notifiers added through this plugin
func (b *Base) Notifiers() []notifier.Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]notifier.Driver(nil), b.notifiers...)
}
