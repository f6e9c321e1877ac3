// Package eventlog is a built-in plugin that records every host notification
// as a log entry and keeps the most recent ones in memory.
//
// Importing the package registers the plugin in the default registry:
//
//	import _ "github.com/platinummonkey/pluginhost/pkg/plugins/builtin/eventlog"
package eventlog

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/notifier"
	"github.com/platinummonkey/pluginhost/pkg/observability"
	"github.com/platinummonkey/pluginhost/pkg/plugins"
)

const (
	// PluginName is the registry name of the plugin
	PluginName = "eventlog"
	// DefaultTailSize is how many messages the driver keeps
	DefaultTailSize = 100
)

// Extension is the API extension contributed by the plugin
var Extension = plugins.Descriptor{
	ExtName:     "EventLog",
	ExtAlias:    "os-event-log",
	Namespace:   "urn:pluginhost:ext:eventlog:v1",
	Description: "Recent host notifications",
}

func init() {
	plugins.Register(PluginName, New)
}

// Plugin logs host notifications through its Driver
type Plugin struct {
	*plugins.Base
	driver *Driver
}

// New creates the plugin and adds its driver to the notification aggregator
func New(host *plugins.Host) (plugins.Plugin, error) {
	if host == nil || host.Notifications == nil {
		return nil, fmt.Errorf("plugin host has no notification hub")
	}
	driver := NewDriver(host.Log, DefaultTailSize)

	base, err := plugins.NewBase(host, []plugins.ExtensionDescriptor{Extension}, driver)
	if err != nil {
		return nil, err
	}
	return &Plugin{Base: base, driver: driver}, nil
}

// OnServiceLoad tags subsequent log entries with serviceName
func (p *Plugin) OnServiceLoad(serviceName string) error {
	p.driver.SetService(serviceName)
	return nil
}

// Driver returns the plugin's notification driver
func (p *Plugin) Driver() *Driver {
	return p.driver
}

// Driver writes notifications to a logger and keeps a bounded tail
type Driver struct {
	log  *logrus.Logger
	size int

	mu      sync.Mutex
	service string
	tail    []notifier.Message
}

// NewDriver creates a driver keeping the last size messages. A size below one
// uses DefaultTailSize.
func NewDriver(log *logrus.Logger, size int) *Driver {
	if size < 1 {
		size = DefaultTailSize
	}
	return &Driver{
		log:  observability.OrDefault(log),
		size: size,
	}
}

// Name implements notifier.Named
func (d *Driver) Name() string {
	return PluginName
}

// SetService sets the service name attached to log entries
func (d *Driver) SetService(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.service = name
}

// Notify implements notifier.Driver
func (d *Driver) Notify(_ context.Context, msg notifier.Message) error {
	d.mu.Lock()
	d.tail = append(d.tail, msg)
	if over := len(d.tail) - d.size; over > 0 {
		d.tail = append(d.tail[:0:0], d.tail[over:]...)
	}
	service := d.service
	d.mu.Unlock()

	d.log.WithFields(logrus.Fields{
		"service":      service,
		"message_id":   msg.ID,
		"publisher_id": msg.PublisherID,
		"event_type":   msg.EventType,
		"priority":     msg.Priority,
	}).Info("Event")
	return nil
}

// Recent returns the retained messages, oldest first
func (d *Driver) Recent() []notifier.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notifier.Message(nil), d.tail...)
}
