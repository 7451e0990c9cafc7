package calendar

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
)

const tokenPersistTimeout = 5 * time.Second

// TokenUpdate carries newly issued tokens. Empty fields were not reissued.
type TokenUpdate struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// TokenStore persists refreshed tokens on the owning principal.
type TokenStore interface {
	UpdateCalendarTokens(ctx context.Context, userID string, update TokenUpdate) error
}

// TokenObserver writes refreshed tokens into one credential and persists
// them. It belongs to a single credential-scoped client.
type TokenObserver struct {
	mu    sync.Mutex
	cred  *Credential
	store TokenStore
}

// NewTokenObserver binds an observer to cred.
func NewTokenObserver(cred *Credential, store TokenStore) *TokenObserver {
	return &TokenObserver{cred: cred, store: store}
}

// OnTokensIssued overwrites each present token and persists the principal.
// Persistence failures are logged and swallowed: a lost refresh is recovered
// by reconnecting the calendar.
func (o *TokenObserver) OnTokensIssued(ctx context.Context, update TokenUpdate) {
	if o == nil || o.cred == nil {
		return
	}
	if update.AccessToken == "" && update.RefreshToken == "" {
		return
	}

	o.mu.Lock()
	if update.AccessToken != "" {
		o.cred.AccessToken = update.AccessToken
		o.cred.Expiry = update.Expiry
	}
	if update.RefreshToken != "" {
		o.cred.RefreshToken = update.RefreshToken
	}
	userID := o.cred.UserID
	o.mu.Unlock()

	metrics.IncCalendarTokenRefresh()
	if o.store == nil {
		return
	}

	// The in-flight calendar call may be cancelled; the new tokens should
	// still land.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenPersistTimeout)
	defer cancel()
	if err := o.store.UpdateCalendarTokens(persistCtx, userID, update); err != nil {
		telemetry.Error("calendar.tokens.persist_failed", map[string]any{
			"user_id": userID,
			"error":   telemetry.ErrString(err),
		})
		return
	}
	telemetry.Info("calendar.tokens.refreshed", map[string]any{
		"user_id":         userID,
		"access_rotated":  update.AccessToken != "",
		"refresh_rotated": update.RefreshToken != "",
	})
}

// observingTokenSource reports tokens that differ from the last one seen.
type observingTokenSource struct {
	ctx      context.Context
	base     oauth2.TokenSource
	observer *TokenObserver

	mu          sync.Mutex
	lastAccess  string
	lastRefresh string
}

func newObservingTokenSource(ctx context.Context, base oauth2.TokenSource, initial *oauth2.Token, observer *TokenObserver) *observingTokenSource {
	ts := &observingTokenSource{ctx: ctx, base: base, observer: observer}
	if initial != nil {
		ts.lastAccess = initial.AccessToken
		ts.lastRefresh = initial.RefreshToken
	}
	return ts
}

// Token implements oauth2.TokenSource.
func (s *observingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	var update TokenUpdate
	s.mu.Lock()
	if tok.AccessToken != "" && tok.AccessToken != s.lastAccess {
		update.AccessToken = tok.AccessToken
		update.Expiry = tok.Expiry
		s.lastAccess = tok.AccessToken
	}
	if tok.RefreshToken != "" && tok.RefreshToken != s.lastRefresh {
		update.RefreshToken = tok.RefreshToken
		s.lastRefresh = tok.RefreshToken
	}
	s.mu.Unlock()

	if update.AccessToken != "" || update.RefreshToken != "" {
		s.observer.OnTokensIssued(s.ctx, update)
	}
	return tok, nil
}
