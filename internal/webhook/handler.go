// Package webhook receives LINE platform callbacks, verifies their
// signatures and feeds each carried event through the bot router.
package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/newspick/newspick-linebot-go/internal/bot"
	"github.com/newspick/newspick-linebot-go/internal/config"
	"github.com/newspick/newspick-linebot-go/internal/ctxutil"
	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
	"github.com/newspick/newspick-linebot-go/internal/logger"
	"github.com/newspick/newspick-linebot-go/internal/metrics"
	"github.com/newspick/newspick-linebot-go/internal/sentry"
	"github.com/newspick/newspick-linebot-go/internal/signature"
)

// SignatureHeader carries the request signature on webhook deliveries.
const SignatureHeader = "X-Line-Signature"

// maxBodyBytes caps how much of a webhook body is read. Real batches
// are far smaller; anything bigger is not a platform delivery.
const maxBodyBytes = 1 << 20

// Router processes a single webhook event and reports the reply
// status it obtained from the platform.
type Router interface {
	Route(ctx context.Context, ev bot.Event) (int, error)
}

// Handler is the Gin handler for the webhook endpoint. Events in a
// batch are processed in order, each gets its own reply attempt, and
// the response status reports the worst outcome of the batch.
type Handler struct {
	verifier *signature.Verifier
	router   Router
	metrics  *metrics.Metrics
	logger   *logger.Logger

	eventTimeout        time.Duration
	maxEventsPerWebhook int
	minReplyTokenLength int
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	ChannelSecret string
	BotConfig     *config.BotConfig
	Router        Router
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		verifier:            signature.NewVerifier(cfg.ChannelSecret),
		router:              cfg.Router,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger.WithModule("webhook"),
		eventTimeout:        cfg.BotConfig.EventTimeout,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
	}
}

// Handle is the Gin handler for the webhook endpoint
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.WithError(err).Warnf("Failed to read webhook body")
		h.metrics.RecordHTTPError("parse_error")
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.verifier.Verify(body, c.GetHeader(SignatureHeader)); err != nil {
		if errors.Is(err, domerrors.ErrMissingSignature) {
			h.logger.Warnf("Webhook request without signature")
			h.metrics.RecordHTTPError("missing_signature")
		} else {
			h.logger.Warnf("Invalid webhook signature")
			h.metrics.RecordHTTPError("invalid_signature")
		}
		c.Status(http.StatusBadRequest)
		return
	}

	cb, err := bot.ParseCallback(body)
	if err != nil {
		h.logger.WithError(err).Errorf("Failed to parse webhook body")
		h.metrics.RecordHTTPError("parse_error")
		c.Status(http.StatusBadRequest)
		return
	}

	h.logger.Debug("Webhook received", "destination", cb.Destination, "payload", string(body))

	events := cb.Events
	if len(events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warnf("Too many events in webhook batch; truncating")
		events = events[:h.maxEventsPerWebhook]
	}

	c.Status(h.processBatch(c.Request.Context(), events))
}

// processBatch routes each event and folds the per-event reply
// statuses into the batch response. Every event gets its shot even
// when an earlier one failed.
func (h *Handler) processBatch(reqCtx context.Context, events []bot.Event) int {
	worst := http.StatusOK
	for _, ev := range events {
		status := h.processEvent(reqCtx, ev)
		if status > worst {
			worst = status
		}
	}
	return worst
}

// processEvent routes one event under its own request ID and bounded
// lifetime. The context is detached from the HTTP request so an
// aborted delivery cannot cancel a reply already in flight.
func (h *Handler) processEvent(reqCtx context.Context, ev bot.Event) int {
	requestID := uuid.NewString()
	log := h.logger.WithRequestID(requestID).WithUserID(ev.UserID)

	if len(ev.ReplyToken) < h.minReplyTokenLength {
		log.WithField("token_length", len(ev.ReplyToken)).
			WithField("event_type", ev.Kind.String()).
			Infof("Event without usable reply token, skipping")
		return http.StatusOK
	}

	ctx := ctxutil.WithRequestID(ctxutil.PreserveTracing(reqCtx), requestID)
	ctx = ctxutil.WithUserID(ctx, ev.UserID)
	ctx, cancel := context.WithTimeout(ctx, h.eventTimeout)
	defer cancel()

	start := time.Now()
	status, err := h.router.Route(ctx, ev)
	if err != nil {
		if status == 0 {
			status = http.StatusInternalServerError
		}
		log.WithError(err).
			WithField("event_type", ev.Kind.String()).
			WithField("status", status).
			Errorf("Event processing failed")
		sentry.CaptureExceptionWithContext(reqCtx, err)
		return status
	}

	log.WithField("event_type", ev.Kind.String()).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Infof("Event processed")
	return status
}
