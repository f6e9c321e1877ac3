package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBadPriority is returned for a notification priority outside the known set
var ErrBadPriority = errors.New("bad notification priority")

// Driver receives notification messages
type Driver interface {
	Notify(ctx context.Context, msg Message) error
}

// DriverFunc adapts a function to the Driver interface.
// Function values are not comparable, so a DriverFunc cannot be removed from an
// Aggregator once added. Use a pointer type when removal is needed.
type DriverFunc func(ctx context.Context, msg Message) error

// Notify calls f(ctx, msg)
func (f DriverFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Named is implemented by drivers that report a stable name for logs and metrics
type Named interface {
	Name() string
}

// Priority is the severity of a notification
type Priority string

const (
	PriorityDebug    Priority = "DEBUG"
	PriorityInfo     Priority = "INFO"
	PriorityWarn     Priority = "WARN"
	PriorityError    Priority = "ERROR"
	PriorityCritical Priority = "CRITICAL"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityDebug, PriorityInfo, PriorityWarn, PriorityError, PriorityCritical:
		return true
	}
	return false
}

// ParsePriority parses a case-insensitive priority name
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrBadPriority, s)
	}
	return p, nil
}

// Message is a single notification event
type Message struct {
	ID          string                 `json:"message_id"`
	PublisherID string                 `json:"publisher_id"`
	EventType   string                 `json:"event_type"`
	Priority    Priority               `json:"priority"`
	Payload     map[string]interface{} `json:"payload"`
	Timestamp   time.Time              `json:"timestamp"`
}

// NewMessage builds a message with a fresh ID and UTC timestamp
func NewMessage(publisherID, eventType string, priority Priority, payload map[string]interface{}) (Message, error) {
	if !priority.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrBadPriority, priority)
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	return Message{
		ID:          uuid.NewString(),
		PublisherID: publisherID,
		EventType:   eventType,
		Priority:    priority,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// driverName returns a label for d
func driverName(d Driver) string {
	if n, ok := d.(Named); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", d)
}
