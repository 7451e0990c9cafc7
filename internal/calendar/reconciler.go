package calendar

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
)

// Reconciler pushes interview records to the remote calendar. It never
// persists anything locally and never returns an error: a nil outcome means
// sync was inapplicable or failed and the record should stay as it is.
type Reconciler struct {
	Stores  StoreFactory
	Payload PayloadOptions
	// Timeout bounds one reconciliation including token refresh.
	Timeout time.Duration
}

// NewReconciler constructs a Reconciler.
func NewReconciler(stores StoreFactory, opts PayloadOptions, timeout time.Duration) *Reconciler {
	return &Reconciler{Stores: stores, Payload: opts, Timeout: timeout}
}

// Reconcile ensures a remote event exists and matches rec.
func (r *Reconciler) Reconcile(ctx context.Context, rec Record, cred Credential) *Outcome {
	if r == nil || r.Stores == nil {
		return nil
	}
	if rec.InterviewAt == nil || rec.InterviewAt.IsZero() || !cred.HasTokens() {
		metrics.IncCalendarSync(metrics.SyncSkipped)
		return nil
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		metrics.ObserveCalendarSyncDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	log := syncLog{applicationID: rec.ID, userID: cred.UserID, eventID: rec.RemoteEventID}

	store, err := r.Stores.NewStore(ctx, &cred)
	if err != nil {
		return log.failed("client", err)
	}

	payload := BuildPayload(rec, r.Payload)

	if eventID := strings.TrimSpace(rec.RemoteEventID); eventID != "" {
		existing, err := store.Get(ctx, eventID)
		switch {
		case err == nil:
			payload.Extensions = existing.Extensions
			updated, err := store.Update(ctx, eventID, payload)
			if err != nil {
				// The event still exists; keep the link rather than creating a duplicate.
				return log.failed("update", err)
			}
			link := updated.MeetingLink
			if link == "" {
				link = existing.MeetingLink
			}
			metrics.IncCalendarSync(metrics.SyncUpdated)
			return &Outcome{EventID: eventID, MeetingLink: link, Action: ActionUpdated}
		case errors.Is(err, ErrEventNotFound):
			metrics.IncCalendarStaleEvent()
			telemetry.Info("calendar.sync.stale_event", log.fields(nil))
			rec.RemoteEventID = ""
			log.eventID = ""
		default:
			return log.failed("get", err)
		}
	}

	payload.RequestConference = true
	created, err := store.Insert(ctx, payload)
	if err != nil {
		return log.failed("insert", err)
	}
	if created.ID == "" {
		return log.failed("insert", errors.New("provider returned event without id"))
	}
	metrics.IncCalendarSync(metrics.SyncCreated)
	return &Outcome{EventID: created.ID, MeetingLink: created.MeetingLink, Action: ActionCreated}
}

type syncLog struct {
	applicationID string
	userID        string
	eventID       string
}

func (l syncLog) fields(extra map[string]any) map[string]any {
	fields := map[string]any{
		"application_id": l.applicationID,
		"user_id":        l.userID,
	}
	if l.eventID != "" {
		fields["remote_event_id"] = l.eventID
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

func (l syncLog) failed(stage string, err error) *Outcome {
	metrics.IncCalendarSync(metrics.SyncFailed)
	telemetry.Warn("calendar.sync.failed", l.fields(map[string]any{
		"stage": stage,
		"error": telemetry.ErrString(err),
	}))
	return nil
}
