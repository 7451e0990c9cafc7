package users

import (
	"context"
	"time"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// CalendarTokens is a partial token write. Empty strings leave the stored
// value untouched; a nil Expiry does too.
type CalendarTokens struct {
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
}

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	UpdateCalendarTokens(ctx context.Context, userID string, tokens CalendarTokens) error
	ClearCalendarTokens(ctx context.Context, userID string) error
}
