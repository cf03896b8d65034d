package chat

import (
	"encoding/json"
	"fmt"
)

// SenderMe is the sender id this client puts on outbound frames.
const SenderMe = "me"

// Message is one inbound chat frame, kept exactly as the backend sent it.
type Message map[string]any

// outbound is the frame written by Send.
type outbound struct {
	Text     string `json:"text"`
	SenderID string `json:"sender_id"`
}

// parseMessage decodes a frame. Anything that is not a JSON object is rejected.
func parseMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("frame is not an object")
	}
	return msg, nil
}

// SenderID returns the sender_id field as text, or "" when missing.
func (m Message) SenderID() string {
	return m.field("sender_id")
}

// Text returns the text field as text, or "" when missing.
func (m Message) Text() string {
	return m.field("text")
}

// Timestamp returns the timestamp label, or "" when missing.
func (m Message) Timestamp() string {
	return m.field("timestamp")
}

// Mine reports whether the frame was sent by this client.
func (m Message) Mine() bool {
	return m.SenderID() == SenderMe
}

func (m Message) field(name string) string {
	v, ok := m[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
