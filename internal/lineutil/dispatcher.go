package lineutil

import (
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
	"github.com/newspick/newspick-linebot-go/internal/logger"
	"github.com/newspick/newspick-linebot-go/internal/metrics"
)

// Sender delivers a reply payload to the messaging platform and reports
// the platform's HTTP status. Implemented by Dispatcher; the bot router
// depends on this interface so tests can capture replies.
type Sender interface {
	Send(replyToken string, messages []messaging_api.MessageInterface) (int, error)
}

// Dispatcher sends replies through the LINE Messaging API.
// Each reply is a single attempt; a failed send is logged with the
// platform's status and raw body, never retried.
type Dispatcher struct {
	client  *messaging_api.MessagingApiAPI
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewDispatcher creates a reply dispatcher. The timeout bounds each
// send call.
func NewDispatcher(channelToken string, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) (*Dispatcher, error) {
	client, err := messaging_api.NewMessagingApiAPI(
		channelToken,
		messaging_api.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}

	return &Dispatcher{
		client:  client,
		metrics: m,
		logger:  log,
	}, nil
}

// Send delivers the messages for the given reply token exactly once.
// Returns the HTTP status reported by the platform; on transport
// failure the status is 0 and the error non-nil.
func (d *Dispatcher) Send(replyToken string, messages []messaging_api.MessageInterface) (int, error) {
	resp, _, err := d.client.ReplyMessageWithHttpInfo(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	d.metrics.RecordReplySend(metrics.StatusClass(statusCode))

	if err != nil {
		d.logger.WithError(err).
			WithField("status", statusCode).
			Error("Failed to send reply")
		if statusCode > 0 {
			return statusCode, domerrors.NewSendError(statusCode, err.Error())
		}
		return 0, fmt.Errorf("reply send: %w", err)
	}

	return statusCode, nil
}
