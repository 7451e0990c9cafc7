package calendar

import (
	"encoding/json"
	"time"
)

// Record is the slice of an application the reconciler reads.
type Record struct {
	ID            string
	Company       string
	Role          string
	InterviewAt   *time.Time
	MeetingLink   string
	RemoteEventID string
}

// Reminder is a single event reminder override.
type Reminder struct {
	Method  string
	Minutes int64
}

// Payload is the outgoing representation of a calendar event.
type Payload struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Reminders   []Reminder
	// Extensions holds provider-owned data (Google conference data) exactly
	// as fetched. It is sent back untouched on update.
	Extensions json.RawMessage
	// RequestConference asks the provider to generate a meeting link.
	RequestConference bool
}

// Event is a remote calendar event as returned by the provider.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	HTMLLink    string
	MeetingLink string
	Extensions  json.RawMessage
}

// Action tells what a reconciliation did remotely.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Outcome is a successful reconciliation. The caller merges it into the
// record; a nil *Outcome means nothing should change locally.
type Outcome struct {
	EventID     string
	MeetingLink string
	Action      Action
}
