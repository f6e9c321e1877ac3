// Package webhook provides a notification backend that delivers messages as
// signed HTTP POST requests.
//
// # Delivery
//
// Each message is sent synchronously as a JSON body. When a secret is
// configured the body is signed with HMAC-SHA256 and the signature is sent in
// the X-Pluginhost-Signature header as "sha256=<hex>". Transport errors and 5xx
// responses are retried with exponential backoff up to MaxRetries times; 4xx
// responses fail immediately.
//
// # Usage Example
//
//	d, err := webhook.New(webhook.Config{
//		URL:    "https://hooks.example.com/events",
//		Secret: "webhook-secret",
//	}, log)
//	if err != nil {
//		return err
//	}
//	_ = backends.Register(notifier.BackendWebhook, d)
//
// Verify signature (receiver side):
//
//	sig := r.Header.Get("X-Pluginhost-Signature")
//	if !webhook.VerifySignature(body, sig, secret) {
//		return errors.New("invalid signature")
//	}
package webhook
