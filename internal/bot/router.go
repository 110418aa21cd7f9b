package bot

import (
	"context"
	"errors"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
	"github.com/newspick/newspick-linebot-go/internal/lineutil"
	"github.com/newspick/newspick-linebot-go/internal/logger"
	"github.com/newspick/newspick-linebot-go/internal/metrics"
	"github.com/newspick/newspick-linebot-go/internal/newsapi"
	"github.com/newspick/newspick-linebot-go/internal/storage"
)

// TriggerPhrase starts a new questionnaire run when received as a
// text message.
const TriggerPhrase = "pick news type"

const invalidOperationText = "Invalid operation. 無効な操作です。"

// NewsLookup fetches news sources matching the collected answers.
type NewsLookup interface {
	Sources(ctx context.Context, category, language, country string) ([]newsapi.Source, error)
}

// Router drives the questionnaire state machine. Every routed event
// produces exactly one reply attempt; events that do not fit the
// current state fall back to the invalid-operation reply without
// touching stored progress.
type Router struct {
	store         *storage.DB
	news          NewsLookup
	sender        lineutil.Sender
	metrics       *metrics.Metrics
	logger        *logger.Logger
	lookupTimeout time.Duration
}

func NewRouter(store *storage.DB, news NewsLookup, sender lineutil.Sender, m *metrics.Metrics, log *logger.Logger, lookupTimeout time.Duration) *Router {
	return &Router{
		store:         store,
		news:          news,
		sender:        sender,
		metrics:       m,
		logger:        log.WithModule("bot"),
		lookupTimeout: lookupTimeout,
	}
}

// Route processes one webhook event and sends its reply. The returned
// status is the platform response code of the send, or 0 when the send
// never reached the platform.
func (r *Router) Route(ctx context.Context, ev Event) (int, error) {
	start := time.Now()
	log := r.logger.WithUserID(ev.UserID)

	messages, outcome := r.resolve(ctx, ev, log)
	r.metrics.RecordWebhookEvent(ev.Kind.String(), outcome, time.Since(start).Seconds())

	status, err := r.sender.Send(ev.ReplyToken, messages)
	if err != nil {
		log.WithError(err).WithField("status", status).Errorf("reply send failed")
		return status, err
	}
	return status, nil
}

// resolve picks the reply for an event and applies its state change.
// It never returns an empty message list.
func (r *Router) resolve(ctx context.Context, ev Event, log *logger.Logger) ([]messaging_api.MessageInterface, string) {
	switch ev.Kind {
	case EventTextMessage:
		if ev.Text != TriggerPhrase {
			return defaultReply(), "out_of_sequence"
		}
		if err := r.store.StartRun(ctx, ev.UserID); err != nil {
			log.WithError(err).Errorf("start questionnaire run")
			return defaultReply(), "error"
		}
		r.metrics.RecordQuestionnaireRun("started")
		return []messaging_api.MessageInterface{LanguagePrompt()}, "success"

	case EventSelection:
		return r.advance(ctx, ev, log)

	default:
		log.WithField("event", string(ev.Raw)).Warnf("unhandled event shape")
		return defaultReply(), "out_of_sequence"
	}
}

func (r *Router) advance(ctx context.Context, ev Event, log *logger.Logger) ([]messaging_api.MessageInterface, string) {
	progress, err := r.store.AdvanceRun(ctx, ev.UserID, ev.ChoiceValue)
	if err != nil {
		if errors.Is(err, domerrors.ErrNoOpenStep) {
			log.Infof("selection outside an open questionnaire run")
			return defaultReply(), "out_of_sequence"
		}
		log.WithError(err).Errorf("advance questionnaire run")
		return defaultReply(), "error"
	}

	switch {
	case !progress.Completed && progress.AnsweredStep == storage.StepLanguage:
		return []messaging_api.MessageInterface{CountryPrompt()}, "success"
	case !progress.Completed:
		return []messaging_api.MessageInterface{CategoryPrompt()}, "success"
	}

	r.metrics.RecordQuestionnaireRun("completed")
	return []messaging_api.MessageInterface{r.lookup(ctx, progress, log)}, "success"
}

// lookup fetches the sources for a completed run. Lookup failures
// degrade to the no-result reply so the user always hears back.
func (r *Router) lookup(ctx context.Context, progress *storage.Progress, log *logger.Logger) messaging_api.MessageInterface {
	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	start := time.Now()
	sources, err := r.news.Sources(lookupCtx, progress.Category, progress.Language, progress.Country)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		status := "error"
		if errors.Is(err, domerrors.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		r.metrics.RecordNewsLookup(status, elapsed)
		log.WithError(err).
			WithField("category", progress.Category).
			WithField("language", progress.Language).
			WithField("country", progress.Country).
			Errorf("news source lookup failed")
		return FormatResults(nil)
	}

	if len(sources) == 0 {
		r.metrics.RecordNewsLookup("empty", elapsed)
	} else {
		r.metrics.RecordNewsLookup("success", elapsed)
	}
	return FormatResults(sources)
}

func defaultReply() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{lineutil.NewTextMessage(invalidOperationText)}
}
