package lineutil

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func TestNewTextMessage(t *testing.T) {
	t.Parallel()

	msg := NewTextMessage("hello")
	if msg.Text != "hello" {
		t.Errorf("Expected text 'hello', got %q", msg.Text)
	}
}

func TestNewTextMessageTruncatesLongText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("あ", 6000)
	msg := NewTextMessage(long)
	if got := len([]rune(msg.Text)); got > 5000 {
		t.Errorf("Expected text capped at 5000 runes, got %d", got)
	}
	if !strings.HasSuffix(msg.Text, "...") {
		t.Error("Expected ellipsis marker on truncated text")
	}
}

func TestNewConfirmTemplate(t *testing.T) {
	t.Parallel()

	msg := NewConfirmTemplate("alt", "question?",
		NewPostbackAction("Yes", "yes"),
		NewPostbackAction("No", "no"),
	)

	tmpl, ok := msg.(*messaging_api.TemplateMessage)
	if !ok {
		t.Fatalf("Expected TemplateMessage, got %T", msg)
	}
	confirm, ok := tmpl.Template.(*messaging_api.ConfirmTemplate)
	if !ok {
		t.Fatalf("Expected ConfirmTemplate, got %T", tmpl.Template)
	}
	if len(confirm.Actions) != 2 {
		t.Errorf("Expected 2 actions, got %d", len(confirm.Actions))
	}
}

func TestNewButtonsTemplateCapsActions(t *testing.T) {
	t.Parallel()

	actions := []Action{
		NewPostbackAction("a", "a"),
		NewPostbackAction("b", "b"),
		NewPostbackAction("c", "c"),
		NewPostbackAction("d", "d"),
		NewPostbackAction("e", "e"),
	}
	msg := NewButtonsTemplate("alt", "title", "text", actions)

	tmpl := msg.(*messaging_api.TemplateMessage)
	buttons := tmpl.Template.(*messaging_api.ButtonsTemplate)
	if len(buttons.Actions) != 4 {
		t.Errorf("Expected actions capped at 4, got %d", len(buttons.Actions))
	}
}

func TestNewCarouselTemplate(t *testing.T) {
	t.Parallel()

	columns := []CarouselColumn{
		{
			ThumbnailImageURL: "https://example.com/a.png",
			Title:             "A",
			Text:              "first",
			Actions:           []Action{NewURIAction("Open", "https://a.example")},
		},
		{
			Title:   "B",
			Text:    "second",
			Actions: []Action{NewURIAction("Open", "https://b.example")},
		},
	}

	msg := NewCarouselTemplate("News results", columns)
	tmpl := msg.(*messaging_api.TemplateMessage)
	carousel, ok := tmpl.Template.(*messaging_api.CarouselTemplate)
	if !ok {
		t.Fatalf("Expected CarouselTemplate, got %T", tmpl.Template)
	}
	if len(carousel.Columns) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(carousel.Columns))
	}
	if carousel.ImageAspectRatio != "square" {
		t.Errorf("Expected square aspect ratio, got %q", carousel.ImageAspectRatio)
	}
	if carousel.Columns[0].ThumbnailImageUrl != "https://example.com/a.png" {
		t.Errorf("Expected thumbnail preserved, got %q", carousel.Columns[0].ThumbnailImageUrl)
	}
	if carousel.Columns[1].ThumbnailImageUrl != "" {
		t.Error("Expected empty thumbnail to stay empty")
	}
}

func TestNewCarouselTemplateCapsColumns(t *testing.T) {
	t.Parallel()

	columns := make([]CarouselColumn, 12)
	for i := range columns {
		columns[i] = CarouselColumn{Text: "t", Actions: []Action{NewURIAction("o", "https://x.example")}}
	}
	msg := NewCarouselTemplate("alt", columns)
	carousel := msg.(*messaging_api.TemplateMessage).Template.(*messaging_api.CarouselTemplate)
	if len(carousel.Columns) != 10 {
		t.Errorf("Expected columns capped at 10, got %d", len(carousel.Columns))
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{"short unchanged", "hello", 59, "hello"},
		{"exact unchanged", strings.Repeat("x", 59), 59, strings.Repeat("x", 59)},
		{"long gets ellipsis", strings.Repeat("x", 60), 59, strings.Repeat("x", 56) + "..."},
		{"multibyte boundary", strings.Repeat("ニ", 60), 59, strings.Repeat("ニ", 56) + "..."},
		{"tiny max", "hello", 2, "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateRunes(tt.text, tt.maxRunes)
			if got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.text, tt.maxRunes, got, tt.want)
			}
			if got != tt.text && len([]rune(got)) > tt.maxRunes {
				t.Errorf("Truncated result exceeds %d runes: %d", tt.maxRunes, len([]rune(got)))
			}
		})
	}
}
