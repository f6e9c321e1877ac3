package plugins

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/notifier"
)

var (
	// ErrNotifierNotRegistered is returned when a plugin removes a notifier it did not add
	ErrNotifierNotRegistered = errors.New("notifier not registered by this plugin")
	// ErrLoadHook wraps a failure returned by a plugin's OnServiceLoad hook
	ErrLoadHook = errors.New("plugin service load hook failed")
	// ErrInvalidClassPath is returned for a malformed <path>.<Symbol> entry
	ErrInvalidClassPath = errors.New("invalid plugin class path")
)

// ExtensionDescriptor describes one API extension. Its interpretation belongs
// to the host's ExtensionRegistrar.
type ExtensionDescriptor interface {
	Name() string
	Alias() string
}

// Descriptor is a plain ExtensionDescriptor value
type Descriptor struct {
	ExtName     string
	ExtAlias    string
	Namespace   string
	Description string
}

// Name implements ExtensionDescriptor
func (d Descriptor) Name() string { return d.ExtName }

// Alias implements ExtensionDescriptor
func (d Descriptor) Alias() string { return d.ExtAlias }

// ExtensionRegistrar is the host API extension manager
type ExtensionRegistrar interface {
	LoadExtension(descriptor ExtensionDescriptor) error
}

// Plugin is the interface every loaded plugin implements
type Plugin interface {
	// APIExtensionDescriptors returns the descriptors fixed at construction
	APIExtensionDescriptors() []ExtensionDescriptor
	// OnServiceLoad is called once, after instantiation, with the loading service name
	OnServiceLoad(serviceName string) error
	// AddNotifier adds d to this plugin and to the notification aggregator
	AddNotifier(d notifier.Driver)
	// RemoveNotifier removes a notifier previously added through this plugin
	RemoveNotifier(d notifier.Driver) error
	// Notifiers returns the notifiers added through this plugin
	Notifiers() []notifier.Driver
}

// Host is what a plugin factory receives from the loading process
type Host struct {
	Notifications *notifier.Hub
	Log           *logrus.Logger
}

// Factory creates a plugin for host
type Factory func(host *Host) (Plugin, error)
