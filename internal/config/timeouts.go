package config

import "time"

// HTTP server timeouts
//
// LINE expects webhook deliveries to be acknowledged quickly and
// retries undelivered batches, so the server budget is sized around
// the per-event processing timeout rather than long-poll traffic.
const (
	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since LINE sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	// Should accommodate a full batch of event processing plus
	// response serialization.
	WebhookHTTPWrite = 65 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Background job intervals
const (
	// StorageMetricsInterval is how often stored answer counts are
	// exported as gauge metrics.
	StorageMetricsInterval = 5 * time.Minute

	// StaleRunCleanupInterval is how often abandoned questionnaire
	// runs are deleted.
	StaleRunCleanupInterval = 12 * time.Hour

	// StaleRunCleanupInitialDelay is the delay before the first
	// cleanup pass. Allows the server to stabilize first.
	StaleRunCleanupInitialDelay = 5 * time.Minute

	// StaleRunMaxAge is how long an unfinished questionnaire run is
	// kept before cleanup removes it.
	StaleRunMaxAge = 24 * time.Hour
)
