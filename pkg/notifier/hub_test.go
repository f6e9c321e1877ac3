package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/pluginhost/pkg/observability"
)

func newTestHub(t *testing.T, active string) (*Hub, *switchStub, *recordingDriver) {
	t.Helper()

	previous := newRecordingDriver("previous")
	backends := NewBackends()
	require.NoError(t, backends.Register("previous", previous))

	sw := &switchStub{driver: active, publisher: "default.publisher"}
	return NewHub(sw, backends, WithLogger(quietLogger())), sw, previous
}

func TestNewHub_RegistersAggregator(t *testing.T) {
	hub, _, _ := newTestHub(t, "")

	d, err := hub.Backends().Get(BackendList)
	require.NoError(t, err)
	assert.Same(t, hub.Aggregator(), d)
}

func TestNewHub_NilBackends(t *testing.T) {
	hub := NewHub(&switchStub{}, nil)
	assert.NotNil(t, hub.Backends())
	assert.Equal(t, []string{BackendList, BackendNoop}, hub.Backends().Names())
}

func TestHub_InstallPreservesPreviousBackend(t *testing.T) {
	hub, sw, previous := newTestHub(t, "previous")
	added := newRecordingDriver("added")

	require.NoError(t, hub.Install())
	hub.Aggregator().AddDriver(added)

	assert.True(t, hub.Installed())
	assert.Equal(t, BackendList, sw.driver)

	require.NoError(t, hub.Notify(context.Background(), "publisher_id", "event_type", PriorityWarn, map[string]interface{}{"a": 3}))
	assert.Equal(t, 1, previous.count())
	assert.Equal(t, 1, added.count())
}

func TestHub_InstallIsIdempotent(t *testing.T) {
	hub, sw, previous := newTestHub(t, "previous")

	require.NoError(t, hub.Install())
	require.NoError(t, hub.Install())
	require.NoError(t, hub.Install())

	assert.Equal(t, 1, hub.Aggregator().Len())
	assert.Equal(t, 1, sw.writes)

	require.NoError(t, hub.Notify(context.Background(), "p", "e", PriorityInfo, nil))
	assert.Equal(t, 1, previous.count())
}

func TestHub_InstallWithoutPreviousBackend(t *testing.T) {
	hub, sw, _ := newTestHub(t, "")

	require.NoError(t, hub.Install())
	assert.Zero(t, hub.Aggregator().Len())
	assert.Equal(t, BackendList, sw.driver)
}

func TestHub_InstallNoopIsPreserved(t *testing.T) {
	hub, _, _ := newTestHub(t, BackendNoop)

	require.NoError(t, hub.Install())
	assert.Equal(t, []Driver{NoopDriver{}}, hub.Aggregator().Drivers())
}

func TestHub_InstallUnknownBackend(t *testing.T) {
	hub, sw, _ := newTestHub(t, "carrier-pigeon")

	err := hub.Install()
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.Equal(t, "carrier-pigeon", sw.driver, "nothing switched on failure")
	assert.Zero(t, sw.writes)
	assert.False(t, hub.Installed())
}

func TestHub_NotifyRoutesToActiveBackend(t *testing.T) {
	hub, _, previous := newTestHub(t, "previous")

	require.NoError(t, hub.Notify(context.Background(), "", "instance.create", PriorityInfo, nil))
	require.Equal(t, 1, previous.count())
	assert.Equal(t, "default.publisher", previous.messages[0].PublisherID)
	assert.Equal(t, "instance.create", previous.messages[0].EventType)
}

func TestHub_NotifyEmptyBackendIsNoop(t *testing.T) {
	hub, _, previous := newTestHub(t, "")

	assert.NoError(t, hub.Notify(context.Background(), "p", "e", PriorityInfo, nil))
	assert.Zero(t, previous.count())
}

func TestHub_NotifyErrors(t *testing.T) {
	t.Run("bad priority", func(t *testing.T) {
		hub, _, previous := newTestHub(t, "previous")
		err := hub.Notify(context.Background(), "p", "e", Priority("LOUD"), nil)
		assert.ErrorIs(t, err, ErrBadPriority)
		assert.Zero(t, previous.count())
	})

	t.Run("unknown backend", func(t *testing.T) {
		hub, _, _ := newTestHub(t, "carrier-pigeon")
		err := hub.Notify(context.Background(), "p", "e", PriorityInfo, nil)
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("backend failure is swallowed", func(t *testing.T) {
		hub, _, previous := newTestHub(t, "previous")
		previous.err = errors.New("boom")
		assert.NoError(t, hub.Notify(context.Background(), "p", "e", PriorityInfo, nil))
	})

	t.Run("backend panic is swallowed", func(t *testing.T) {
		hub, _, previous := newTestHub(t, "previous")
		previous.panicVal = "kaboom"
		assert.NotPanics(t, func() {
			assert.NoError(t, hub.Notify(context.Background(), "p", "e", PriorityInfo, nil))
		})
	})
}

func TestHub_Metrics(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	previous := newRecordingDriver("previous")
	backends := NewBackends()
	require.NoError(t, backends.Register("previous", previous))
	hub := NewHub(&switchStub{driver: "previous"}, backends, WithLogger(quietLogger()), WithMetrics(metrics))

	require.NoError(t, hub.Notify(context.Background(), "p", "e", PriorityInfo, nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("previous", observability.StatusSuccess)))

	require.NoError(t, hub.Install())
	require.NoError(t, hub.Notify(context.Background(), "p", "e", PriorityInfo, nil))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("previous", observability.StatusSuccess)),
		"aggregator deliveries are counted per driver, not per backend")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotifierDrivers))
}
