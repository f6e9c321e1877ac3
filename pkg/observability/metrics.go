package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values shared by the plugin and notifier packages
const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	SourceRegistry  = "registry"
	SourceClassPath = "class_path"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Plugin metrics
	PluginLoadsTotal          *prometheus.CounterVec
	PluginsLoaded             prometheus.Gauge
	ServiceLoadHooksTotal     *prometheus.CounterVec
	ExtensionsRegisteredTotal prometheus.Counter

	// Notification metrics
	NotificationsTotal *prometheus.CounterVec
	NotifierDrivers    prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		PluginLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginhost_plugin_loads_total",
				Help: "Total number of plugin instantiation attempts",
			},
			[]string{"source", "status"},
		),
		PluginsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pluginhost_plugins_loaded",
				Help: "Number of plugins held by the plugin manager",
			},
		),
		ServiceLoadHooksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginhost_service_load_hooks_total",
				Help: "Total number of plugin service-load hook invocations",
			},
			[]string{"status"},
		),
		ExtensionsRegisteredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pluginhost_extensions_registered_total",
				Help: "Total number of API extension descriptors handed to the registrar",
			},
		),

		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginhost_notifications_total",
				Help: "Total number of notification deliveries per driver",
			},
			[]string{"driver", "status"},
		),
		NotifierDrivers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pluginhost_notifier_drivers",
				Help: "Number of drivers registered with the notification aggregator",
			},
		),
	}

	registry.MustRegister(
		m.PluginLoadsTotal,
		m.PluginsLoaded,
		m.ServiceLoadHooksTotal,
		m.ExtensionsRegisteredTotal,
		m.NotificationsTotal,
		m.NotifierDrivers,
	)

	return m
}

// RecordPluginLoad counts one instantiation attempt from source
func (m *Metrics) RecordPluginLoad(source string, err error) {
	if m == nil {
		return
	}
	m.PluginLoadsTotal.WithLabelValues(source, status(err)).Inc()
}

// SetPluginsLoaded sets the number of cached plugins
func (m *Metrics) SetPluginsLoaded(n int) {
	if m == nil {
		return
	}
	m.PluginsLoaded.Set(float64(n))
}

// RecordServiceLoadHook counts one OnServiceLoad invocation
func (m *Metrics) RecordServiceLoadHook(err error) {
	if m == nil {
		return
	}
	m.ServiceLoadHooksTotal.WithLabelValues(status(err)).Inc()
}

// RecordExtensionRegistered counts one descriptor accepted by the registrar
func (m *Metrics) RecordExtensionRegistered() {
	if m == nil {
		return
	}
	m.ExtensionsRegisteredTotal.Inc()
}

// RecordNotification counts one delivery attempt to driver
func (m *Metrics) RecordNotification(driver string, err error) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(driver, status(err)).Inc()
}

// SetNotifierDrivers sets the aggregator driver count
func (m *Metrics) SetNotifierDrivers(n int) {
	if m == nil {
		return
	}
	m.NotifierDrivers.Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
