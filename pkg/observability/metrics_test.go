package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	require.NotNil(t, metrics)
	assert.NotNil(t, metrics.PluginLoadsTotal)
	assert.NotNil(t, metrics.PluginsLoaded)
	assert.NotNil(t, metrics.ServiceLoadHooksTotal)
	assert.NotNil(t, metrics.ExtensionsRegisteredTotal)
	assert.NotNil(t, metrics.NotificationsTotal)
	assert.NotNil(t, metrics.NotifierDrivers)

	// Registering twice on the same registry must panic
	assert.Panics(t, func() { NewMetrics(registry) })
}

func TestMetrics_Record(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	boom := errors.New("boom")

	metrics.RecordPluginLoad(SourceRegistry, nil)
	metrics.RecordPluginLoad(SourceRegistry, nil)
	metrics.RecordPluginLoad(SourceClassPath, boom)
	metrics.SetPluginsLoaded(2)
	metrics.RecordServiceLoadHook(nil)
	metrics.RecordServiceLoadHook(boom)
	metrics.RecordExtensionRegistered()
	metrics.RecordNotification("log", nil)
	metrics.RecordNotification("log", boom)
	metrics.SetNotifierDrivers(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PluginLoadsTotal.WithLabelValues(SourceRegistry, StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PluginLoadsTotal.WithLabelValues(SourceClassPath, StatusFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PluginsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ServiceLoadHooksTotal.WithLabelValues(StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExtensionsRegisteredTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("log", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("log", StatusFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.NotifierDrivers))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.RecordPluginLoad(SourceRegistry, nil)
		metrics.SetPluginsLoaded(1)
		metrics.RecordServiceLoadHook(nil)
		metrics.RecordExtensionRegistered()
		metrics.RecordNotification("noop", nil)
		metrics.SetNotifierDrivers(1)
	})
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.SetPluginsLoaded(4)

	mux := http.NewServeMux()
	RegisterMetricsEndpoint(mux, registry)

	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "pluginhost_plugins_loaded 4"))
}
