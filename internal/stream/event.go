package stream

import "mockchat/internal/model"

// Event types pushed to stream clients. Clients key off the "type" field of
// each payload; "ping" carries no payload semantics and must be ignored.
const (
	EventInit   = "init"
	EventNew    = "new"
	EventTyping = "typing"
	EventPing   = "ping"
	EventError  = "error"
)

// MessageBatch is the payload for "init" and "new" events. Messages are
// ordered by ascending id; an empty init batch serializes as [] rather than
// null so clients can treat it uniformly.
type MessageBatch struct {
	Type     string          `json:"type"`
	Messages []model.Message `json:"messages"`
}

// TypingBatch is a full snapshot of active typing signals, never a delta.
type TypingBatch struct {
	Type   string               `json:"type"`
	Typing []model.TypingSignal `json:"typing"`
}

type Ping struct {
	Type string `json:"type"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newMessageBatch(eventType string, messages []model.Message) MessageBatch {
	if messages == nil {
		messages = []model.Message{}
	}
	return MessageBatch{Type: eventType, Messages: messages}
}
