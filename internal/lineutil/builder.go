// Package lineutil provides utility functions for building LINE messages
// and actions, and for sending replies through the Messaging API.
package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// CarouselColumn represents a column in a carousel template.
type CarouselColumn struct {
	ThumbnailImageURL string
	Title             string
	Text              string
	Actions           []messaging_api.ActionInterface
}

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// NewTextMessage creates a simple text message.
// LINE API limits: max 5000 characters per text message
func NewTextMessage(text string) *messaging_api.TextMessage {
	if len([]rune(text)) > 5000 {
		text = TruncateRunes(text, 5000)
	}

	return &messaging_api.TextMessage{
		Text: text,
	}
}

// NewConfirmTemplate creates a confirm template message with two options.
// The altText is displayed in push notifications and chat lists.
func NewConfirmTemplate(altText, text string, left, right Action) messaging_api.MessageInterface {
	return &messaging_api.TemplateMessage{
		AltText: altText,
		Template: &messaging_api.ConfirmTemplate{
			Text:    text,
			Actions: []messaging_api.ActionInterface{left, right},
		},
	}
}

// NewButtonsTemplate creates a buttons template message.
// The title is the template title, text is the message content, and
// actions are the buttons.
// LINE API limits: max 4 actions, title max 40 chars, text max 160 chars
func NewButtonsTemplate(altText, title, text string, actions []Action) messaging_api.MessageInterface {
	if len(actions) > 4 {
		actions = actions[:4]
	}
	if len([]rune(title)) > 40 {
		title = TruncateRunes(title, 40)
	}
	if len([]rune(text)) > 160 {
		text = TruncateRunes(text, 160)
	}

	template := &messaging_api.ButtonsTemplate{
		Text:    text,
		Actions: actions,
	}
	if title != "" {
		template.Title = title
	}

	return &messaging_api.TemplateMessage{
		AltText:  altText,
		Template: template,
	}
}

// NewCarouselTemplate creates a carousel template message with multiple columns.
// LINE API limits: max 10 columns, each with max 4 actions
func NewCarouselTemplate(altText string, columns []CarouselColumn) messaging_api.MessageInterface {
	if len(columns) > 10 {
		columns = columns[:10]
	}

	templateColumns := make([]messaging_api.CarouselColumn, len(columns))
	for i, col := range columns {
		column := messaging_api.CarouselColumn{
			Text:    col.Text,
			Actions: col.Actions,
		}
		if col.ThumbnailImageURL != "" {
			column.ThumbnailImageUrl = col.ThumbnailImageURL
		}
		if col.Title != "" {
			column.Title = col.Title
		}
		templateColumns[i] = column
	}

	return &messaging_api.TemplateMessage{
		AltText: altText,
		Template: &messaging_api.CarouselTemplate{
			Columns:          templateColumns,
			ImageAspectRatio: "square",
		},
	}
}

// NewPostbackAction creates a postback action that sends data to the bot when clicked.
// The label is displayed on the button, and data is sent back as postback data.
func NewPostbackAction(label, data string) Action {
	return &messaging_api.PostbackAction{
		Label: label,
		Data:  data,
	}
}

// NewURIAction creates a URI action that opens a URL when clicked.
func NewURIAction(label, uri string) Action {
	return &messaging_api.UriAction{
		Label: label,
		Uri:   uri,
	}
}

// TruncateRunes truncates text by rune count (not byte count) to properly
// handle UTF-8. Returns the truncated string with "..." appended when the
// text exceeds maxRunes. Multi-byte characters are never split.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
