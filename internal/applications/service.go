package applications

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtracker-backend/internal/calendar"
	"jobtracker-backend/internal/queue"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
)

// CredentialSource loads the calendar credential of a principal.
type CredentialSource interface {
	CalendarCredential(ctx context.Context, userID string) (calendar.Credential, error)
}

// CalendarSyncer mirrors an interview into the remote calendar. A nil
// outcome leaves the record untouched.
type CalendarSyncer interface {
	Reconcile(ctx context.Context, rec calendar.Record, cred calendar.Credential) *calendar.Outcome
}

// Sync describes what reconciliation did for one mutation.
type Sync string

const (
	SyncNone    Sync = ""
	SyncCreated Sync = "created"
	SyncUpdated Sync = "updated"
	SyncSkipped Sync = "skipped"
)

// Result is a persisted application plus the reconciliation that preceded it.
type Result struct {
	Application Application
	Sync        Sync

	// PreviousStatus is set by Update.
	PreviousStatus Status
}

// Synced reports whether a reconciliation outcome was merged.
func (r Result) Synced() bool {
	return r.Sync == SyncCreated || r.Sync == SyncUpdated
}

// Service contains business logic for applications.
type Service struct {
	Repo     Repo
	Creds    CredentialSource
	Calendar CalendarSyncer
	Queue    queue.Client

	now func() time.Time
}

// NewService constructs a Service. creds, syncer and q may be nil.
func NewService(repo Repo, creds CredentialSource, syncer CalendarSyncer, q queue.Client) *Service {
	return &Service{Repo: repo, Creds: creds, Calendar: syncer, Queue: q, now: time.Now}
}

// CreateInput carries the fields accepted on create.
type CreateInput struct {
	Company     string
	Role        string
	Status      string
	AppliedDate *time.Time
	InterviewAt *time.Time
	MeetingLink string
}

// UpdateInput is a partial update. Nil fields are left unchanged;
// ClearInterview removes the interview time.
type UpdateInput struct {
	Company        *string
	Role           *string
	Status         *string
	AppliedDate    *time.Time
	InterviewAt    *time.Time
	ClearInterview bool
	MeetingLink    *string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return Result{}, err
	}

	now := s.clock()
	app := Application{
		ID:          uuid.NewString(),
		UserID:      userID,
		Company:     strings.TrimSpace(in.Company),
		Role:        strings.TrimSpace(in.Role),
		Status:      status,
		AppliedDate: now,
		InterviewAt: utcPtr(in.InterviewAt),
		MeetingLink: strings.TrimSpace(in.MeetingLink),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.AppliedDate != nil && !in.AppliedDate.IsZero() {
		app.AppliedDate = in.AppliedDate.UTC()
	}
	if err := validate(app); err != nil {
		return Result{}, err
	}

	sync := s.syncCalendar(ctx, &app)
	if err := s.Repo.Create(ctx, app); err != nil {
		return Result{}, err
	}

	metrics.IncApplicationMutation()
	s.publish(ctx, queue.EventApplicationCreated, app, sync)
	return Result{Application: app, Sync: sync}, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Result, error) {
	app, err := s.Get(ctx, userID, id)
	if err != nil {
		return Result{}, err
	}

	previous := app.Status
	if in.Company != nil {
		app.Company = strings.TrimSpace(*in.Company)
	}
	if in.Role != nil {
		app.Role = strings.TrimSpace(*in.Role)
	}
	if in.Status != nil {
		status, err := ParseStatus(*in.Status)
		if err != nil {
			return Result{}, err
		}
		app.Status = status
	}
	if in.AppliedDate != nil && !in.AppliedDate.IsZero() {
		app.AppliedDate = in.AppliedDate.UTC()
	}
	switch {
	case in.ClearInterview:
		app.InterviewAt = nil
	case in.InterviewAt != nil:
		app.InterviewAt = utcPtr(in.InterviewAt)
	}
	if in.MeetingLink != nil {
		app.MeetingLink = strings.TrimSpace(*in.MeetingLink)
	}
	if err := validate(app); err != nil {
		return Result{}, err
	}
	app.UpdatedAt = s.clock()

	sync := s.syncCalendar(ctx, &app)
	if err := s.Repo.Update(ctx, app); err != nil {
		return Result{}, err
	}

	metrics.IncApplicationMutation()
	s.publish(ctx, queue.EventApplicationUpdated, app, sync)
	return Result{Application: app, Sync: sync, PreviousStatus: previous}, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Application, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return Application{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Application, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, filter)
}

// Delete removes the application. Its remote event, if any, is kept.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	app, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	metrics.IncApplicationMutation()
	s.publish(ctx, queue.EventApplicationDeleted, app, SyncNone)
	return nil
}

// ClaimGuest moves a guest's applications to a registered user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return 0, fmt.Errorf("%w: guest and user ids are required", ErrInvalidInput)
	}
	return s.Repo.ClaimGuest(ctx, guestUserID, authedUserID)
}

// syncCalendar reconciles an interview and merges the outcome into app.
// It never fails the mutation.
func (s *Service) syncCalendar(ctx context.Context, app *Application) Sync {
	if app.Status != StatusInterview || s.Calendar == nil || s.Creds == nil {
		return SyncNone
	}
	cred, err := s.Creds.CalendarCredential(ctx, app.UserID)
	if err != nil {
		telemetry.Warn("applications.calendar_credential_failed", map[string]any{
			"application_id": app.ID,
			"user_id":        app.UserID,
			"error":          telemetry.ErrString(err),
		})
		return SyncSkipped
	}
	if !cred.HasTokens() {
		return SyncNone
	}

	outcome := s.Calendar.Reconcile(ctx, toRecord(*app), cred)
	if outcome == nil {
		// A stale remoteEventId stays stored. The next sync gets NotFound
		// again and recreates the event.
		return SyncSkipped
	}
	applyOutcome(app, outcome)
	if outcome.Action == calendar.ActionCreated {
		return SyncCreated
	}
	return SyncUpdated
}

func applyOutcome(app *Application, outcome *calendar.Outcome) {
	app.RemoteEventID = outcome.EventID
	app.RemoteMeetingLink = outcome.MeetingLink
	if app.MeetingLink == "" && outcome.MeetingLink != "" {
		app.MeetingLink = outcome.MeetingLink
	}
}

func toRecord(app Application) calendar.Record {
	return calendar.Record{
		ID:            app.ID,
		Company:       app.Company,
		Role:          app.Role,
		InterviewAt:   app.InterviewAt,
		MeetingLink:   app.MeetingLink,
		RemoteEventID: app.RemoteEventID,
	}
}

func (s *Service) publish(ctx context.Context, eventType string, app Application, sync Sync) {
	if s.Queue == nil {
		return
	}
	msg := queue.Message{
		Type:          eventType,
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Status:        string(app.Status),
		RemoteEventID: app.RemoteEventID,
		CalendarSync:  string(sync),
		OccurredAt:    s.clock().Format(time.RFC3339),
		Version:       queue.MessageVersion,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		telemetry.Warn("applications.publish_failed", map[string]any{
			"application_id": app.ID,
			"type":           eventType,
			"error":          telemetry.ErrString(err),
		})
	}
}

func validate(app Application) error {
	if app.Company == "" {
		return fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	if app.MeetingLink != "" {
		u, err := url.Parse(app.MeetingLink)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: meetingLink must be an http(s) url", ErrInvalidInput)
		}
	}
	return nil
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
