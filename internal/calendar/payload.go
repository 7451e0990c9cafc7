package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultDuration is the length of an interview event.
	DefaultDuration = time.Hour
	// DefaultTimeZone labels event times when none is configured.
	DefaultTimeZone = "UTC"

	provenanceMarker = "Synced from Job Tracker"
)

// DefaultReminders mirrors what the dashboard sets for manual events.
var DefaultReminders = []Reminder{
	{Method: "email", Minutes: 30},
	{Method: "popup", Minutes: 10},
}

// PayloadOptions are deployment settings applied to every derived payload.
type PayloadOptions struct {
	TimeZone string
	Duration time.Duration
}

func (o PayloadOptions) withDefaults() PayloadOptions {
	if strings.TrimSpace(o.TimeZone) == "" {
		o.TimeZone = DefaultTimeZone
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	return o
}

// BuildPayload derives the event for an interview record. The record must
// have InterviewAt set.
func BuildPayload(rec Record, opts PayloadOptions) Payload {
	opts = opts.withDefaults()
	start := rec.InterviewAt.UTC()
	return Payload{
		Title:       fmt.Sprintf("Interview: %s - %s", rec.Company, rec.Role),
		Description: describe(rec),
		Start:       start,
		End:         start.Add(opts.Duration),
		TimeZone:    opts.TimeZone,
		Reminders:   append([]Reminder(nil), DefaultReminders...),
	}
}

func describe(rec Record) string {
	var lines []string
	if role := strings.TrimSpace(rec.Role); role != "" {
		lines = append(lines, "Role: "+role)
	}
	if link := strings.TrimSpace(rec.MeetingLink); link != "" {
		lines = append(lines, "Meeting Link: "+link)
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, provenanceMarker)
	return strings.Join(lines, "\n")
}
