// Package config provides centralized timeout constants for the application.
//
// Messenger and LINE both expect the webhook to be acknowledged quickly;
// events are processed after the 200 OK has been written, so the HTTP
// timeouts only cover reading a small JSON body.
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single webhook event,
	// including the listings lookup and every outbound send.
	WebhookProcessing = 60 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	WebhookHTTPWrite = 15 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Outbound API timeouts
const (
	// SendAPIRequest bounds a single call to a platform send API.
	SendAPIRequest = 10 * time.Second
)

// Lifecycle timeouts
const (
	// SentryFlush bounds how long shutdown waits for buffered Sentry events.
	SentryFlush = 2 * time.Second
)
