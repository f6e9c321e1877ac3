package config

import "sync"

// Store is the mutable, process-scoped view of a Config. It is injected into
// the notification hub (active backend switch) and the plugin manager (class
// paths) instead of living in package state.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore creates a store seeded with a copy of cfg. A nil cfg uses Default().
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = Default()
	}
	s := &Store{cfg: *cfg}
	s.cfg.Plugins.ClassPaths = append([]string(nil), cfg.Plugins.ClassPaths...)
	return s
}

// NotificationDriver returns the name of the active notification backend
func (s *Store) NotificationDriver() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Notifications.Driver
}

// SetNotificationDriver replaces the active notification backend
func (s *Store) SetNotificationDriver(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Notifications.Driver = name
}

// DefaultPublisherID returns the publisher used for anonymous notifications
func (s *Store) DefaultPublisherID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Notifications.DefaultPublisherID
}

// PluginClassPaths returns a copy of the configured plugin class paths
func (s *Store) PluginClassPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.cfg.Plugins.ClassPaths...)
}

// SetPluginClassPaths replaces the configured plugin class paths
func (s *Store) SetPluginClassPaths(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Plugins.ClassPaths = append([]string(nil), paths...)
}

// Snapshot returns a copy of the current configuration
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.Plugins.ClassPaths = append([]string(nil), s.cfg.Plugins.ClassPaths...)
	return cfg
}

// Apply copies the settings that may change while the host runs from cfg.
// The active notification backend, the service name and the plugin class
// paths are left alone: the hub owns the backend once the aggregator is
// installed, and class paths are only read when plugins are discovered.
func (s *Store) Apply(cfg *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Notifications.DefaultPublisherID = cfg.Notifications.DefaultPublisherID
	s.cfg.Observability.LogLevel = cfg.Observability.LogLevel
}
