package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestObserverOverwritesOnlyPresentFields(t *testing.T) {
	cred := &Credential{UserID: "google:1", AccessToken: "old-access", RefreshToken: "old-refresh"}
	store := &recordingTokenStore{}
	obs := NewTokenObserver(cred, store)
	expiry := time.Now().Add(time.Hour)

	obs.OnTokensIssued(context.Background(), TokenUpdate{AccessToken: "new-access", Expiry: expiry})

	assert.Equal(t, "new-access", cred.AccessToken)
	assert.Equal(t, "old-refresh", cred.RefreshToken)
	assert.Equal(t, expiry, cred.Expiry)
	require.Len(t, store.updates, 1)
	assert.Empty(t, store.updates[0].RefreshToken)

	obs.OnTokensIssued(context.Background(), TokenUpdate{RefreshToken: "new-refresh"})
	assert.Equal(t, "new-access", cred.AccessToken)
	assert.Equal(t, "new-refresh", cred.RefreshToken)
	assert.Len(t, store.updates, 2)
}

func TestObserverIgnoresEmptyUpdate(t *testing.T) {
	cred := &Credential{UserID: "google:1", AccessToken: "a", RefreshToken: "r"}
	store := &recordingTokenStore{}

	NewTokenObserver(cred, store).OnTokensIssued(context.Background(), TokenUpdate{})

	assert.Empty(t, store.updates)
	assert.Equal(t, "a", cred.AccessToken)
}

func TestObserverSwallowsPersistFailure(t *testing.T) {
	cred := &Credential{UserID: "google:1", AccessToken: "a", RefreshToken: "r"}
	store := &recordingTokenStore{err: errors.New("db down")}

	assert.NotPanics(t, func() {
		NewTokenObserver(cred, store).OnTokensIssued(context.Background(), TokenUpdate{AccessToken: "b"})
	})
	assert.Equal(t, "b", cred.AccessToken)
	assert.Len(t, store.updates, 1)
}

type ctxCheckingStore struct {
	sawErr error
}

func (s *ctxCheckingStore) UpdateCalendarTokens(ctx context.Context, userID string, update TokenUpdate) error {
	s.sawErr = ctx.Err()
	return nil
}

func TestObserverPersistsAfterCallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &ctxCheckingStore{}

	NewTokenObserver(&Credential{UserID: "google:1"}, store).OnTokensIssued(ctx, TokenUpdate{AccessToken: "b"})

	assert.NoError(t, store.sawErr)
}

type sequenceSource struct {
	tokens []*oauth2.Token
	i      int
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	tok := s.tokens[s.i]
	if s.i < len(s.tokens)-1 {
		s.i++
	}
	return tok, nil
}

func TestObservingSourceReportsOnlyChanges(t *testing.T) {
	initial := &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}
	base := &sequenceSource{tokens: []*oauth2.Token{
		{AccessToken: "a1", RefreshToken: "r1"},
		{AccessToken: "a2"},
		{AccessToken: "a2"},
		{AccessToken: "a3", RefreshToken: "r2"},
	}}
	cred := &Credential{UserID: "google:1", AccessToken: "a1", RefreshToken: "r1"}
	store := &recordingTokenStore{}
	src := newObservingTokenSource(context.Background(), base, initial, NewTokenObserver(cred, store))

	for i := 0; i < 4; i++ {
		_, err := src.Token()
		require.NoError(t, err)
	}

	require.Len(t, store.updates, 2)
	assert.Equal(t, TokenUpdate{AccessToken: "a2"}, store.updates[0])
	assert.Equal(t, TokenUpdate{AccessToken: "a3", RefreshToken: "r2"}, store.updates[1])
	assert.Equal(t, Credential{UserID: "google:1", AccessToken: "a3", RefreshToken: "r2"}, *cred)
}

func TestCredentialTokenTreatsUnknownExpiryAsExpired(t *testing.T) {
	tok := Credential{AccessToken: "a", RefreshToken: "r"}.token()
	assert.False(t, tok.Valid())

	tok = Credential{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}.token()
	assert.True(t, tok.Valid())
}
