package calendar

import (
	"context"
	"errors"
)

var (
	// ErrEventNotFound means the remote event no longer exists (404/410 or cancelled).
	ErrEventNotFound = errors.New("calendar event not found")
	// ErrUnauthorized means the provider rejected the credential.
	ErrUnauthorized = errors.New("calendar credential rejected")
)

// RemoteEventStore is the remote calendar as seen by the reconciler. Each
// call is a single remote request; retries, if any, happen below it.
type RemoteEventStore interface {
	Get(ctx context.Context, eventID string) (Event, error)
	Insert(ctx context.Context, payload Payload) (Event, error)
	Update(ctx context.Context, eventID string, payload Payload) (Event, error)
}

// StoreFactory builds a RemoteEventStore bound to one credential. Tokens
// refreshed by that store are written back to cred and persisted.
type StoreFactory interface {
	NewStore(ctx context.Context, cred *Credential) (RemoteEventStore, error)
}
