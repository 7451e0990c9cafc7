package applications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// datetime-local inputs arrive without an offset and are taken as UTC.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// optionalTime distinguishes an absent field from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: expected a date-time string", ErrInvalidInput)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			o.Value = &t
			return nil
		}
	}
	return fmt.Errorf("%w: invalid date-time %q", ErrInvalidInput, raw)
}

type createRequest struct {
	Company           string       `json:"company"`
	Role              string       `json:"role"`
	Status            string       `json:"status"`
	AppliedDate       optionalTime `json:"appliedDate"`
	InterviewDateTime optionalTime `json:"interviewDateTime"`
	MeetingLink       string       `json:"meetingLink"`
}

func (r createRequest) input() CreateInput {
	return CreateInput{
		Company:     r.Company,
		Role:        r.Role,
		Status:      r.Status,
		AppliedDate: r.AppliedDate.Value,
		InterviewAt: r.InterviewDateTime.Value,
		MeetingLink: r.MeetingLink,
	}
}

// updateRequest has no remoteEventId: that field is owned by reconciliation.
type updateRequest struct {
	Company           *string      `json:"company"`
	Role              *string      `json:"role"`
	Status            *string      `json:"status"`
	AppliedDate       optionalTime `json:"appliedDate"`
	InterviewDateTime optionalTime `json:"interviewDateTime"`
	MeetingLink       *string      `json:"meetingLink"`
}

func (r updateRequest) input() UpdateInput {
	in := UpdateInput{
		Company:     r.Company,
		Role:        r.Role,
		Status:      r.Status,
		AppliedDate: r.AppliedDate.Value,
		MeetingLink: r.MeetingLink,
	}
	if r.InterviewDateTime.Set {
		in.InterviewAt = r.InterviewDateTime.Value
		in.ClearInterview = r.InterviewDateTime.Value == nil
	}
	return in
}

// ApplicationResponse is the outward-facing representation of an application.
type ApplicationResponse struct {
	ID                string     `json:"id"`
	Company           string     `json:"company"`
	Role              string     `json:"role"`
	Status            Status     `json:"status"`
	AppliedDate       time.Time  `json:"appliedDate"`
	InterviewDateTime *time.Time `json:"interviewDateTime,omitempty"`
	MeetingLink       string     `json:"meetingLink,omitempty"`
	RemoteEventID     string     `json:"remoteEventId,omitempty"`
	RemoteMeetingLink string     `json:"remoteMeetingLink,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type mutationResponse struct {
	ApplicationResponse
	CalendarSynced bool `json:"calendarSynced"`
}

func toResponse(app Application) ApplicationResponse {
	return ApplicationResponse{
		ID:                app.ID,
		Company:           app.Company,
		Role:              app.Role,
		Status:            app.Status,
		AppliedDate:       app.AppliedDate,
		InterviewDateTime: app.InterviewAt,
		MeetingLink:       app.MeetingLink,
		RemoteEventID:     app.RemoteEventID,
		RemoteMeetingLink: app.RemoteMeetingLink,
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
}

func toMutationResponse(res Result) mutationResponse {
	return mutationResponse{ApplicationResponse: toResponse(res.Application), CalendarSynced: res.Synced()}
}
