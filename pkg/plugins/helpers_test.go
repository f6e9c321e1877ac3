package plugins

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/pluginhost/pkg/config"
	"github.com/platinummonkey/pluginhost/pkg/notifier"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestHost builds a host whose active backend is "previous"
func newTestHost(t *testing.T) (*Host, *config.Store, *countingDriver) {
	t.Helper()

	cfg := config.Default()
	cfg.Notifications.Driver = "previous"
	store := config.NewStore(cfg)

	previous := &countingDriver{name: "previous"}
	backends := notifier.NewBackends()
	require.NoError(t, backends.Register("previous", previous))

	log := quietLogger()
	hub := notifier.NewHub(store, backends, notifier.WithLogger(log))
	return &Host{Notifications: hub, Log: log}, store, previous
}

// countingDriver counts deliveries and optionally appends its name to a trace
type countingDriver struct {
	name  string
	mu    sync.Mutex
	calls int
	trace *[]string
}

func (d *countingDriver) Name() string { return d.name }

func (d *countingDriver) Notify(_ context.Context, _ notifier.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.trace != nil {
		*d.trace = append(*d.trace, d.name)
	}
	return nil
}

func (d *countingDriver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// hookPlugin records OnServiceLoad calls and can fail them
type hookPlugin struct {
	*Base
	name    string
	mu      sync.Mutex
	loads   []string
	hookErr error
}

func (p *hookPlugin) OnServiceLoad(serviceName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, serviceName)
	return p.hookErr
}

func (p *hookPlugin) loadCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.loads...)
}

// hookFactory returns a factory creating a fresh hookPlugin per call and
// the list of plugins it has created
func hookFactory(name string, descriptors ...ExtensionDescriptor) (Factory, *[]*hookPlugin) {
	var mu sync.Mutex
	created := &[]*hookPlugin{}
	return func(host *Host) (Plugin, error) {
		base, err := NewBase(host, descriptors)
		if err != nil {
			return nil, err
		}
		p := &hookPlugin{Base: base, name: name}
		mu.Lock()
		*created = append(*created, p)
		mu.Unlock()
		return p, nil
	}, created
}

type recordingRegistrar struct {
	names  []string
	err    error
	failOn string
}

func (r *recordingRegistrar) LoadExtension(d ExtensionDescriptor) error {
	if r.failOn != "" && d.Name() == r.failOn {
		return r.err
	}
	r.names = append(r.names, d.Name())
	return nil
}

func testMessage(t *testing.T) notifier.Message {
	t.Helper()
	msg, err := notifier.NewMessage("publisher_id", "event_type", notifier.PriorityWarn, map[string]interface{}{"a": 3})
	require.NoError(t, err)
	return msg
}

// valueDriver is a comparable struct type whose values may still fail to
// compare when v holds a slice
type valueDriver struct {
	v interface{}
}

func (valueDriver) Notify(context.Context, notifier.Message) error { return nil }
