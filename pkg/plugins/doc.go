// Package plugins provides plugin discovery, loading and extension collection
// for a host service.
//
// # Overview
//
// A plugin contributes a fixed set of API extension descriptors and any number
// of notification observers. Plugins are discovered from a registration table of
// factories and from configured class paths, instantiated once per host
// process, and told which service loaded them.
//
// # Plugin System
//
// Plugin Interface: APIExtensionDescriptors, OnServiceLoad, AddNotifier,
// RemoveNotifier, Notifiers
// Base: Reference implementation embedded by concrete plugins
// Registry: Ordered table of named factories
// ModuleLoader: Resolves <path>.<Symbol> class paths into factories
// Manager: Discovers, instantiates and caches plugins
//
// # Writing a Plugin
//
//	type Plugin struct {
//		*plugins.Base
//	}
//
//	func New(host *plugins.Host) (plugins.Plugin, error) {
//		base, err := plugins.NewBase(host, []plugins.ExtensionDescriptor{
//			plugins.Descriptor{ExtName: "Quotas", ExtAlias: "os-quotas"},
//		})
//		if err != nil {
//			return nil, err
//		}
//		return &Plugin{Base: base}, nil
//	}
//
//	func init() {
//		plugins.Register("quotas", New)
//	}
//
// # Loading
//
//	host := &plugins.Host{Notifications: hub, Log: log}
//	manager := plugins.NewManager(host, plugins.WithClassPaths(store))
//
//	loaded, err := manager.Load("compute-api")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := manager.ExtensionFactory(registrar); err != nil {
//		log.Fatal(err)
//	}
//
// # Failure Handling
//
// A factory that fails, panics or returns nil is logged and skipped; discovery
// continues. A failing OnServiceLoad hook aborts the remaining hooks and is
// returned from Load. Load runs discovery once: later calls return the cached
// plugins, even for a different service name.
//
// # Related Packages
//
//   - pkg/notifier: Notification fan-out used by plugin observers
//   - pkg/plugins/builtin/eventlog: Example plugin
package plugins
