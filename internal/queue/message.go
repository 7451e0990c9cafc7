package queue

import (
	"encoding/json"
	"errors"
)

// Event types published after an application mutation.
const (
	EventApplicationCreated = "application.created"
	EventApplicationUpdated = "application.updated"
	EventApplicationDeleted = "application.deleted"
)

// MessageVersion is bumped on incompatible payload changes.
const MessageVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	Type          string `json:"type"`
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
	Status        string `json:"status,omitempty"`
	RemoteEventID string `json:"remoteEventId,omitempty"`
	CalendarSync  string `json:"calendarSync,omitempty"`
	RequestID     string `json:"requestId,omitempty"`
	OccurredAt    string `json:"occurredAt"`
	Version       int    `json:"version"`
}

var errInvalidMessage = errors.New("queue message requires type and applicationId")

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Type == "" || msg.ApplicationID == "" {
		return nil, errInvalidMessage
	}
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" || msg.ApplicationID == "" {
		return Message{}, errInvalidMessage
	}
	return msg, nil
}
