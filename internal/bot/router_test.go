package bot

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"

	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
	"github.com/newspick/newspick-linebot-go/internal/logger"
	"github.com/newspick/newspick-linebot-go/internal/metrics"
	"github.com/newspick/newspick-linebot-go/internal/newsapi"
	"github.com/newspick/newspick-linebot-go/internal/storage"
)

type sendCall struct {
	replyToken string
	messages   []messaging_api.MessageInterface
}

type fakeSender struct {
	status int
	err    error
	calls  []sendCall
}

func (f *fakeSender) Send(replyToken string, messages []messaging_api.MessageInterface) (int, error) {
	f.calls = append(f.calls, sendCall{replyToken: replyToken, messages: messages})
	return f.status, f.err
}

func (f *fakeSender) last(t *testing.T) sendCall {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("no reply was sent")
	}
	return f.calls[len(f.calls)-1]
}

type fakeNews struct {
	sources []newsapi.Source
	err     error

	category string
	language string
	country  string
}

func (f *fakeNews) Sources(_ context.Context, category, language, country string) ([]newsapi.Source, error) {
	f.category, f.language, f.country = category, language, country
	return f.sources, f.err
}

func newTestRouter(t *testing.T, news NewsLookup) (*Router, *fakeSender) {
	t.Helper()

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sender := &fakeSender{status: 200}
	log := logger.NewWithWriter("error", io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	return NewRouter(db, news, sender, m, log, time.Second), sender
}

func textOf(t *testing.T, msg messaging_api.MessageInterface) string {
	t.Helper()
	text, ok := msg.(*messaging_api.TextMessage)
	if !ok {
		t.Fatalf("message type = %T, want *messaging_api.TextMessage", msg)
	}
	return text.Text
}

func TestRouteTriggerStartsRun(t *testing.T) {
	t.Parallel()

	router, sender := newTestRouter(t, &fakeNews{})
	status, err := router.Route(t.Context(), Event{
		Kind:       EventTextMessage,
		ReplyToken: "tok",
		UserID:     "U1",
		Text:       TriggerPhrase,
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if status != 200 {
		t.Errorf("status = %d, want 200", status)
	}

	call := sender.last(t)
	if call.replyToken != "tok" {
		t.Errorf("replyToken = %q, want %q", call.replyToken, "tok")
	}
	tmpl, ok := call.messages[0].(*messaging_api.TemplateMessage)
	if !ok {
		t.Fatalf("reply type = %T, want *messaging_api.TemplateMessage", call.messages[0])
	}
	if _, ok := tmpl.Template.(*messaging_api.ConfirmTemplate); !ok {
		t.Errorf("template type = %T, want language confirm prompt", tmpl.Template)
	}
}

func TestRouteNonTriggerText(t *testing.T) {
	t.Parallel()

	router, sender := newTestRouter(t, &fakeNews{})
	if _, err := router.Route(t.Context(), Event{
		Kind:       EventTextMessage,
		ReplyToken: "tok",
		UserID:     "U1",
		Text:       "hello",
	}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}

	if got := textOf(t, sender.last(t).messages[0]); got != invalidOperationText {
		t.Errorf("reply = %q, want invalid-operation text", got)
	}
}

func TestRouteSelectionWithoutRun(t *testing.T) {
	t.Parallel()

	router, sender := newTestRouter(t, &fakeNews{})
	if _, err := router.Route(t.Context(), Event{
		Kind:        EventSelection,
		ReplyToken:  "tok",
		UserID:      "U1",
		ChoiceValue: "en",
	}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}

	if got := textOf(t, sender.last(t).messages[0]); got != invalidOperationText {
		t.Errorf("reply = %q, want invalid-operation text", got)
	}
}

func TestRouteFullQuestionnaire(t *testing.T) {
	t.Parallel()

	news := &fakeNews{sources: []newsapi.Source{
		{Name: "Nikkei", Description: "Business daily", URL: "https://www.nikkei.com"},
	}}
	router, sender := newTestRouter(t, news)
	ctx := t.Context()

	steps := []Event{
		{Kind: EventTextMessage, ReplyToken: "t0", UserID: "U1", Text: TriggerPhrase},
		{Kind: EventSelection, ReplyToken: "t1", UserID: "U1", ChoiceValue: "en"},
		{Kind: EventSelection, ReplyToken: "t2", UserID: "U1", ChoiceValue: "jp"},
		{Kind: EventSelection, ReplyToken: "t3", UserID: "U1", ChoiceValue: "business"},
	}
	for i, ev := range steps {
		if _, err := router.Route(ctx, ev); err != nil {
			t.Fatalf("Route() step %d error = %v", i, err)
		}
	}
	if len(sender.calls) != 4 {
		t.Fatalf("len(calls) = %d, want 4", len(sender.calls))
	}

	country := sender.calls[1].messages[0].(*messaging_api.TemplateMessage)
	if _, ok := country.Template.(*messaging_api.ButtonsTemplate); !ok {
		t.Errorf("second reply template = %T, want country buttons", country.Template)
	}

	final := sender.calls[3].messages[0].(*messaging_api.TemplateMessage)
	if _, ok := final.Template.(*messaging_api.CarouselTemplate); !ok {
		t.Errorf("final reply template = %T, want result carousel", final.Template)
	}
	if news.category != "business" || news.language != "en" || news.country != "jp" {
		t.Errorf("lookup args = (%q, %q, %q), want (business, en, jp)",
			news.category, news.language, news.country)
	}

	// The run is closed, a further selection is out of sequence.
	if _, err := router.Route(ctx, Event{
		Kind: EventSelection, ReplyToken: "t4", UserID: "U1", ChoiceValue: "en",
	}); err != nil {
		t.Fatalf("Route() after completion error = %v", err)
	}
	if got := textOf(t, sender.last(t).messages[0]); got != invalidOperationText {
		t.Errorf("reply after completion = %q, want invalid-operation text", got)
	}
}

func TestRouteLookupFailureRepliesNoResult(t *testing.T) {
	t.Parallel()

	news := &fakeNews{err: domerrors.NewLookupError("business", "en", "jp", 500, errors.New("boom"))}
	router, sender := newTestRouter(t, news)
	ctx := t.Context()

	for _, ev := range []Event{
		{Kind: EventTextMessage, ReplyToken: "t0", UserID: "U1", Text: TriggerPhrase},
		{Kind: EventSelection, ReplyToken: "t1", UserID: "U1", ChoiceValue: "en"},
		{Kind: EventSelection, ReplyToken: "t2", UserID: "U1", ChoiceValue: "jp"},
		{Kind: EventSelection, ReplyToken: "t3", UserID: "U1", ChoiceValue: "business"},
	} {
		if _, err := router.Route(ctx, ev); err != nil {
			t.Fatalf("Route() error = %v", err)
		}
	}

	if got := textOf(t, sender.last(t).messages[0]); got != "No result / ニュースがありませんでした" {
		t.Errorf("reply = %q, want no-result text", got)
	}
}

func TestRouteUnknownEvent(t *testing.T) {
	t.Parallel()

	router, sender := newTestRouter(t, &fakeNews{})
	if _, err := router.Route(t.Context(), Event{
		Kind:       EventUnknown,
		ReplyToken: "tok",
		UserID:     "U1",
		Raw:        []byte(`{"type":"follow"}`),
	}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}

	if got := textOf(t, sender.last(t).messages[0]); got != invalidOperationText {
		t.Errorf("reply = %q, want invalid-operation text", got)
	}
}

func TestRouteSendFailureSurfaced(t *testing.T) {
	t.Parallel()

	router, sender := newTestRouter(t, &fakeNews{})
	sender.status = 500
	sender.err = domerrors.NewSendError(500, "platform down")

	status, err := router.Route(t.Context(), Event{
		Kind:       EventTextMessage,
		ReplyToken: "tok",
		UserID:     "U1",
		Text:       TriggerPhrase,
	})
	if err == nil {
		t.Error("Route() error = nil, want send error")
	}
	if status != 500 {
		t.Errorf("status = %d, want 500", status)
	}
}
