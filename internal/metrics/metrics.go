package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookEventsTotal     *prometheus.CounterVec

	// Reply delivery metrics
	ReplySendsTotal *prometheus.CounterVec

	// News lookup metrics
	NewsLookupsTotal          *prometheus.CounterVec
	NewsLookupDurationSeconds prometheus.Histogram

	// Questionnaire metrics
	QuestionnaireRunsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Storage metrics
	AnswersStored prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newspick_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"event_type"}, // event_type: message, selection, unknown
		),

		WebhookEventsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspick_webhook_events_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, out_of_sequence
		),

		ReplySendsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspick_reply_sends_total",
				Help: "Total number of reply sends by status class",
			},
			[]string{"status_class"}, // status_class: 2xx, 4xx, 5xx, error
		),

		NewsLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspick_news_lookups_total",
				Help: "Total number of news source lookups by status",
			},
			[]string{"status"}, // status: success, empty, error, timeout
		),

		NewsLookupDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newspick_news_lookup_duration_seconds",
				Help:    "News lookup duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),

		QuestionnaireRunsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspick_questionnaire_runs_total",
				Help: "Total number of questionnaire runs by outcome",
			},
			[]string{"outcome"}, // outcome: started, completed
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspick_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: missing_signature, invalid_signature, parse_error
		),

		AnswersStored: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "newspick_answers_stored",
				Help: "Current number of stored questionnaire answer rows",
			},
		),
	}

	return m
}

// RecordWebhookEvent records processing of a single webhook event
func (m *Metrics) RecordWebhookEvent(eventType, status string, duration float64) {
	m.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordReplySend records a reply delivery attempt by status class
func (m *Metrics) RecordReplySend(statusClass string) {
	m.ReplySendsTotal.WithLabelValues(statusClass).Inc()
}

// RecordNewsLookup records a news lookup with its outcome
func (m *Metrics) RecordNewsLookup(status string, duration float64) {
	m.NewsLookupsTotal.WithLabelValues(status).Inc()
	m.NewsLookupDurationSeconds.Observe(duration)
}

// RecordQuestionnaireRun records a questionnaire lifecycle transition
func (m *Metrics) RecordQuestionnaireRun(outcome string) {
	m.QuestionnaireRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetAnswersStored updates the stored answer row gauge
func (m *Metrics) SetAnswersStored(count int) {
	m.AnswersStored.Set(float64(count))
}

// StatusClass maps an HTTP status code to a coarse label for metrics.
func StatusClass(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "error"
	}
}
