package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// NoteIssuedMessage announces a debit note recorded in the register.
// The worker loads the full note from the database by ID.
type NoteIssuedMessage struct {
	ID        string    `json:"id"`
	Student   string    `json:"student,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewNoteIssuedMessage(id, student string) *NoteIssuedMessage {
	return &NoteIssuedMessage{
		ID:        id,
		Student:   student,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NoteIssuedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NoteIssuedMessageFromJSON decodes a message; a missing id is an error.
func NoteIssuedMessageFromJSON(data []byte) (*NoteIssuedMessage, error) {
	var msg NoteIssuedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message has no note id")
	}
	return &msg, nil
}
