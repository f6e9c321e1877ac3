package plugins

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/observability"
)

// ClassPathSource supplies the configured <path>.<Symbol> plugin entries
type ClassPathSource interface {
	PluginClassPaths() []string
}

// Manager discovers, instantiates and caches plugins for one host process.
// It starts unloaded; the first Load runs discovery and the service load
// hooks, and every later Load returns the cached result.
type Manager struct {
	host       *Host
	registry   *Registry
	loader     ModuleLoader
	classPaths ClassPathSource
	log        *logrus.Logger
	metrics    *observability.Metrics

	mu          sync.Mutex
	loaded      bool
	serviceName string
	plugins     []Plugin
	loadErr     error
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithRegistry sets the registry enumerated during discovery
func WithRegistry(registry *Registry) ManagerOption {
	return func(m *Manager) {
		m.registry = registry
	}
}

// WithModuleLoader sets the loader used for class path entries
func WithModuleLoader(loader ModuleLoader) ManagerOption {
	return func(m *Manager) {
		m.loader = loader
	}
}

// WithClassPaths sets where class path entries are read from. Entries are
// read once, when discovery runs.
func WithClassPaths(source ClassPathSource) ManagerOption {
	return func(m *Manager) {
		m.classPaths = source
	}
}

// WithLogger sets the manager logger
func WithLogger(log *logrus.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMetrics sets the manager metrics
func WithMetrics(metrics *observability.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates an unloaded manager. Without options it enumerates the
// default registry and loads class paths as Go plugin modules.
func NewManager(host *Host, opts ...ManagerOption) *Manager {
	m := &Manager{
		host:     host,
		registry: defaultRegistry,
		loader:   SharedObjectLoader{},
	}
	if host != nil {
		m.log = host.Log
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = observability.OrDefault(m.log)
	return m
}

// Load returns the plugins for this process. The first call discovers and
// instantiates every plugin, then calls OnServiceLoad(serviceName) on each in
// order. Later calls return the cached list and error without running
// discovery or hooks again, whatever serviceName they pass.
//
// Plugin construction failures are logged and the entry skipped. The first
// OnServiceLoad failure or panic stops the remaining hooks and is returned
// wrapped in ErrLoadHook. OnServiceLoad must not call Load.
func (m *Manager) Load(serviceName string) ([]Plugin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		if serviceName != m.serviceName {
			m.log.WithFields(logrus.Fields{
				"service":        serviceName,
				"loaded_service": m.serviceName,
			}).Warn("Plugins already loaded for another service, returning cached plugins")
		}
		return m.pluginsLocked(), m.loadErr
	}

	m.plugins = m.discover()
	m.serviceName = serviceName
	m.loaded = true
	m.metrics.SetPluginsLoaded(len(m.plugins))

	m.loadErr = m.fireServiceLoad(serviceName)

	m.log.WithFields(logrus.Fields{
		"service": serviceName,
		"count":   len(m.plugins),
	}).Info("Loaded plugins")

	return m.pluginsLocked(), m.loadErr
}

// Plugins returns the cached plugins, or nil before the first Load
func (m *Manager) Plugins() []Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pluginsLocked()
}

// Loaded reports whether discovery has run
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// ServiceName returns the service name passed to the loading call
func (m *Manager) ServiceName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serviceName
}

// ExtensionFactory hands every descriptor of every loaded plugin to
// registrar, in plugin order then descriptor order. The first registrar
// error is returned and the remaining descriptors are not registered.
func (m *Manager) ExtensionFactory(registrar ExtensionRegistrar) error {
	for _, p := range m.Plugins() {
		for _, d := range p.APIExtensionDescriptors() {
			if err := registrar.LoadExtension(d); err != nil {
				return fmt.Errorf("failed to load extension %s: %w", d.Name(), err)
			}
			m.metrics.RecordExtensionRegistered()
		}
	}
	return nil
}

// purge drops the cached plugins and returns the manager to unloaded. No
// plugin teardown runs.
func (m *Manager) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = false
	m.serviceName = ""
	m.plugins = nil
	m.loadErr = nil
	m.metrics.SetPluginsLoaded(0)
}

func (m *Manager) pluginsLocked() []Plugin {
	if m.plugins == nil {
		return nil
	}
	return append([]Plugin(nil), m.plugins...)
}

func (m *Manager) discover() []Plugin {
	var found []Plugin

	if m.registry != nil {
		for _, entry := range m.registry.Entries() {
			p, err := m.instantiate(entry.Factory)
			m.metrics.RecordPluginLoad(observability.SourceRegistry, err)
			if err != nil {
				m.log.WithError(err).WithField("plugin", entry.Name).Error("Failed to load plugin")
				continue
			}
			found = append(found, p)
		}
	}

	if m.classPaths != nil {
		for _, entry := range m.classPaths.PluginClassPaths() {
			p, err := m.loadClassPath(entry)
			m.metrics.RecordPluginLoad(observability.SourceClassPath, err)
			if err != nil {
				m.log.WithError(err).WithField("class_path", entry).Error("Failed to load plugin")
				continue
			}
			found = append(found, p)
		}
	}

	return found
}

func (m *Manager) loadClassPath(entry string) (Plugin, error) {
	cp, err := ParseClassPath(entry)
	if err != nil {
		return nil, err
	}
	if m.loader == nil {
		return nil, fmt.Errorf("no module loader configured for %s", cp)
	}

	factory, err := m.loader.Load(cp)
	if err != nil {
		return nil, err
	}
	return m.instantiate(factory)
}

// instantiate runs factory, turning a panic or a nil plugin into an error
func (m *Manager) instantiate(factory Factory) (p Plugin, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("plugin factory panicked: %v\n%s", r, debug.Stack())
		}
	}()

	p, err = factory(m.host)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("plugin factory returned nil plugin")
	}
	return p, nil
}

func (m *Manager) fireServiceLoad(serviceName string) error {
	for i, p := range m.plugins {
		err := callServiceLoad(p, serviceName)
		m.metrics.RecordServiceLoadHook(err)
		if err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"plugin":  fmt.Sprintf("%T", p),
				"service": serviceName,
				"skipped": len(m.plugins) - i - 1,
			}).Error("Plugin service load hook failed")
			return fmt.Errorf("%w: %T: %w", ErrLoadHook, p, err)
		}
	}
	return nil
}

// callServiceLoad runs p's hook, turning a panic into an error
func callServiceLoad(p Plugin, serviceName string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("service load hook panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return p.OnServiceLoad(serviceName)
}
