// Package bot routes inbound LINE webhook events through the
// questionnaire state machine and builds the replies.
package bot

import (
	"encoding/json"
	"fmt"
)

// EventKind discriminates the inbound event shapes the router handles.
type EventKind int

const (
	// EventTextMessage is a plain text message from a user.
	EventTextMessage EventKind = iota
	// EventSelection is a choice made through a template action.
	EventSelection
	// EventUnknown is anything else carried in the webhook batch.
	EventUnknown
)

// String implements fmt.Stringer, used as the event_type metric label.
func (k EventKind) String() string {
	switch k {
	case EventTextMessage:
		return "message"
	case EventSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// Event is one webhook event reduced to the fields routing needs.
// Exactly one of Text and ChoiceValue is meaningful, per Kind.
type Event struct {
	Kind        EventKind
	ReplyToken  string
	UserID      string
	Text        string
	ChoiceValue string

	// Raw keeps the original event object for diagnostics on
	// unknown kinds.
	Raw json.RawMessage
}

// Callback is the parsed webhook request body.
type Callback struct {
	Destination string
	Events      []Event
}

type callbackEnvelope struct {
	Destination string            `json:"destination"`
	Events      []json.RawMessage `json:"events"`
}

type eventEnvelope struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Postback struct {
		Data string `json:"data"`
	} `json:"postback"`
}

// ParseCallback decodes a webhook request body into tagged events.
// Event objects that do not decode as JSON fail the whole callback;
// events of shapes we do not handle come back as EventUnknown so the
// caller can still reply to the rest of the batch.
func ParseCallback(body []byte) (*Callback, error) {
	var env callbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode webhook body: %w", err)
	}

	cb := &Callback{
		Destination: env.Destination,
		Events:      make([]Event, 0, len(env.Events)),
	}
	for i, raw := range env.Events {
		var ee eventEnvelope
		if err := json.Unmarshal(raw, &ee); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", i, err)
		}

		ev := Event{
			Kind:       EventUnknown,
			ReplyToken: ee.ReplyToken,
			UserID:     ee.Source.UserID,
			Raw:        raw,
		}
		switch {
		case ee.Type == "message" && ee.Message.Type == "text":
			ev.Kind = EventTextMessage
			ev.Text = ee.Message.Text
		case ee.Type == "postback":
			ev.Kind = EventSelection
			ev.ChoiceValue = ee.Postback.Data
		}
		cb.Events = append(cb.Events, ev)
	}
	return cb, nil
}
