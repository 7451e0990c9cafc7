package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interviewRecord() Record {
	at := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	return Record{ID: "app-1", Company: "Acme", Role: "SWE", InterviewAt: &at}
}

func connected() Credential {
	return Credential{UserID: "google:1", AccessToken: "access", RefreshToken: "refresh"}
}

func newTestReconciler(store *fakeStore) (*Reconciler, *fakeFactory) {
	factory := &fakeFactory{store: store}
	return NewReconciler(factory, PayloadOptions{TimeZone: "UTC"}, time.Second), factory
}

func TestReconcileCreatesOnceThenReuses(t *testing.T) {
	store := newFakeStore()
	r, _ := newTestReconciler(store)
	rec := interviewRecord()

	first := r.Reconcile(context.Background(), rec, connected())
	require.NotNil(t, first)
	assert.Equal(t, ActionCreated, first.Action)
	assert.Equal(t, "evt-1", first.EventID)
	assert.Equal(t, "https://meet.example/1", first.MeetingLink)
	require.Len(t, store.inserts, 1)
	assert.True(t, store.inserts[0].RequestConference)

	rec.RemoteEventID = first.EventID
	second := r.Reconcile(context.Background(), rec, connected())
	require.NotNil(t, second)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, "evt-1", second.EventID)
	assert.Len(t, store.inserts, 1, "no second event may be created")
	assert.Len(t, store.events, 1)
}

func TestReconcileRecreatesStaleEvent(t *testing.T) {
	store := newFakeStore()
	r, _ := newTestReconciler(store)
	rec := interviewRecord()
	rec.RemoteEventID = "deleted-remotely"

	out := r.Reconcile(context.Background(), rec, connected())
	require.NotNil(t, out)
	assert.Equal(t, ActionCreated, out.Action)
	assert.NotEqual(t, "deleted-remotely", out.EventID)
	assert.Equal(t, []string{"deleted-remotely"}, store.gets)
	assert.Len(t, store.inserts, 1)
	assert.Empty(t, store.updates)
}

func TestReconcileInapplicableMakesNoRemoteCalls(t *testing.T) {
	cases := map[string]struct {
		rec  Record
		cred Credential
	}{
		"no interview time": {rec: Record{ID: "a", Company: "Acme"}, cred: connected()},
		"no tokens":         {rec: interviewRecord(), cred: Credential{UserID: "google:1"}},
		"access only":       {rec: interviewRecord(), cred: Credential{UserID: "google:1", AccessToken: "a"}},
		"refresh only":      {rec: interviewRecord(), cred: Credential{UserID: "google:1", RefreshToken: "r"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			r, factory := newTestReconciler(store)

			out := r.Reconcile(context.Background(), tc.rec, tc.cred)
			assert.Nil(t, out)
			assert.Zero(t, factory.built, "client must not be built")
			assert.Zero(t, store.calls())
		})
	}
}

func TestReconcilePreservesConferenceDataOnUpdate(t *testing.T) {
	store := newFakeStore()
	conference := []byte(`{"conferenceId":"abc-defg-hij","entryPoints":[{"entryPointType":"video","uri":"https://meet.google.com/abc-defg-hij"}]}`)
	store.events["evt-9"] = Event{ID: "evt-9", MeetingLink: "https://meet.google.com/abc-defg-hij", Extensions: conference}
	r, _ := newTestReconciler(store)
	rec := interviewRecord()
	rec.RemoteEventID = "evt-9"

	out := r.Reconcile(context.Background(), rec, connected())
	require.NotNil(t, out)
	require.Len(t, store.updates, 1)
	assert.Equal(t, conference, []byte(store.updates[0].Extensions))
	assert.False(t, store.updates[0].RequestConference)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", out.MeetingLink)
}

func TestReconcileUpdateFailureDoesNotCreate(t *testing.T) {
	store := newFakeStore()
	store.events["evt-1"] = Event{ID: "evt-1"}
	store.updateErr = errUnavailable
	r, _ := newTestReconciler(store)
	rec := interviewRecord()
	rec.RemoteEventID = "evt-1"

	out := r.Reconcile(context.Background(), rec, connected())
	assert.Nil(t, out)
	assert.Len(t, store.updates, 1)
	assert.Empty(t, store.inserts)
}

func TestReconcileTransientGetFailureKeepsLink(t *testing.T) {
	store := newFakeStore()
	store.getErr = errUnavailable
	r, _ := newTestReconciler(store)
	rec := interviewRecord()
	rec.RemoteEventID = "evt-1"

	out := r.Reconcile(context.Background(), rec, connected())
	assert.Nil(t, out)
	assert.Empty(t, store.inserts)
	assert.Empty(t, store.updates)
	assert.Equal(t, "evt-1", rec.RemoteEventID)
}

func TestReconcileInsertFailureReturnsNil(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errUnavailable
	r, _ := newTestReconciler(store)

	assert.Nil(t, r.Reconcile(context.Background(), interviewRecord(), connected()))
	assert.Len(t, store.inserts, 1)
}

func TestReconcileClientBuildFailure(t *testing.T) {
	factory := &fakeFactory{err: errors.New("oauth not configured")}
	r := NewReconciler(factory, PayloadOptions{}, 0)

	assert.Nil(t, r.Reconcile(context.Background(), interviewRecord(), connected()))
	assert.Equal(t, 1, factory.built)
}

func TestReconcileNilReconciler(t *testing.T) {
	var r *Reconciler
	assert.Nil(t, r.Reconcile(context.Background(), interviewRecord(), connected()))
}

func TestReconcileAppliesTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	factory := factoryFunc(func(ctx context.Context, cred *Credential) (RemoteEventStore, error) {
		deadline, hasDeadline = ctx.Deadline()
		return newFakeStore(), nil
	})
	r := NewReconciler(factory, PayloadOptions{}, 2*time.Second)

	before := time.Now()
	require.NotNil(t, r.Reconcile(context.Background(), interviewRecord(), connected()))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, before.Add(2*time.Second), deadline, time.Second)
}

type factoryFunc func(ctx context.Context, cred *Credential) (RemoteEventStore, error)

func (f factoryFunc) NewStore(ctx context.Context, cred *Credential) (RemoteEventStore, error) {
	return f(ctx, cred)
}
