package applications

import (
	"fmt"
	"strings"
	"time"
)

// Status is the pipeline stage of an application.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusRejected  Status = "Rejected"
)

// ParseStatus accepts the canonical names case-insensitively. Empty means
// Applied.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "applied":
		return StatusApplied, nil
	case "interview":
		return StatusInterview, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
}

// Application is one tracked job application.
type Application struct {
	ID                string
	UserID            string
	Company           string
	Role              string
	Status            Status
	AppliedDate       time.Time
	InterviewAt       *time.Time
	MeetingLink       string
	RemoteEventID     string
	RemoteMeetingLink string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
