package notifier

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// recordingDriver records every message it receives
type recordingDriver struct {
	name     string
	mu       sync.Mutex
	messages []Message
	err      error
	panicVal interface{}
	trace    *[]string
}

func newRecordingDriver(name string) *recordingDriver {
	return &recordingDriver{name: name}
}

func (d *recordingDriver) Name() string { return d.name }

func (d *recordingDriver) Notify(_ context.Context, msg Message) error {
	d.mu.Lock()
	d.messages = append(d.messages, msg)
	if d.trace != nil {
		*d.trace = append(*d.trace, d.name)
	}
	d.mu.Unlock()

	if d.panicVal != nil {
		panic(d.panicVal)
	}
	return d.err
}

func (d *recordingDriver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.messages)
}

// switchStub is an in-memory BackendSwitch
type switchStub struct {
	driver    string
	publisher string
	writes    int
}

func (s *switchStub) NotificationDriver() string { return s.driver }

func (s *switchStub) SetNotificationDriver(name string) {
	s.driver = name
	s.writes++
}

func (s *switchStub) DefaultPublisherID() string { return s.publisher }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testMessage() Message {
	msg, _ := NewMessage("publisher_id", "event_type", PriorityWarn, map[string]interface{}{"a": 3})
	return msg
}

// valueDriver is a comparable struct type whose values may still fail to
// compare when v holds a slice
type valueDriver struct {
	v interface{}
}

func (valueDriver) Notify(context.Context, Message) error { return nil }
