package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/notifier"
	"github.com/platinummonkey/pluginhost/pkg/observability"
)

// Request headers set on every delivery
const (
	HeaderEvent     = "X-Pluginhost-Event"
	HeaderMessageID = "X-Pluginhost-Message-ID"
	HeaderDelivery  = "X-Pluginhost-Delivery"
	HeaderSignature = "X-Pluginhost-Signature"
)

// Config configures the webhook driver
type Config struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	MaxRetries int

	// InitialInterval is the first retry delay
	InitialInterval time.Duration
	// MaxInterval caps a single retry delay
	MaxInterval time.Duration
}

// DefaultConfig returns the default delivery settings for url
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Driver delivers notifications to a single webhook endpoint
type Driver struct {
	cfg    Config
	client *http.Client
	log    *logrus.Logger
}

// New creates a webhook driver
func New(cfg Config, log *logrus.Logger) (*Driver, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}

	defaults := DefaultConfig(cfg.URL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defaults.MaxInterval
	}

	return &Driver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    observability.OrDefault(log),
	}, nil
}

// Name implements notifier.Named
func (d *Driver) Name() string {
	return notifier.BackendWebhook
}

// Notify implements notifier.Driver
func (d *Driver) Notify(ctx context.Context, msg notifier.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	attempts := 0
	operation := func() error {
		attempts++
		return d.send(ctx, msg, payload)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.InitialInterval
	policy.MaxInterval = d.cfg.MaxInterval
	policy.MaxElapsedTime = 0

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(d.cfg.MaxRetries)), ctx))
	if err != nil {
		return fmt.Errorf("webhook delivery failed after %d attempt(s): %w", attempts, err)
	}

	if attempts > 1 {
		d.log.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"attempts":   attempts,
		}).Debug("Webhook delivered after retry")
	}
	return nil
}

// send performs one delivery attempt. Client errors are permanent.
func (d *Driver) send(ctx context.Context, msg notifier.Message, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, msg.EventType)
	req.Header.Set(HeaderMessageID, msg.ID)
	req.Header.Set(HeaderDelivery, time.Now().UTC().Format(time.RFC3339))
	if d.cfg.Secret != "" {
		req.Header.Set(HeaderSignature, generateSignature(payload, d.cfg.Secret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return backoff.Permanent(fmt.Errorf("webhook returned client error status: %d", resp.StatusCode))
	default:
		return fmt.Errorf("webhook returned non-2xx status: %d", resp.StatusCode)
	}
}

// VerifySignature verifies the webhook signature
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := generateSignature(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// generateSignature generates HMAC-SHA256 signature
func generateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
