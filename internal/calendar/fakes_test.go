package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeStore struct {
	mu     sync.Mutex
	events map[string]Event
	nextID int

	getErr    error
	insertErr error
	updateErr error

	gets    []string
	inserts []Payload
	updates []Payload
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: map[string]Event{}}
}

func (s *fakeStore) Get(ctx context.Context, eventID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = append(s.gets, eventID)
	if s.getErr != nil {
		return Event{}, s.getErr
	}
	ev, ok := s.events[eventID]
	if !ok {
		return Event{}, fmt.Errorf("get %s: %w", eventID, ErrEventNotFound)
	}
	return ev, nil
}

func (s *fakeStore) Insert(ctx context.Context, payload Payload) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts = append(s.inserts, payload)
	if s.insertErr != nil {
		return Event{}, s.insertErr
	}
	s.nextID++
	ev := Event{
		ID:          fmt.Sprintf("evt-%d", s.nextID),
		Title:       payload.Title,
		Start:       payload.Start,
		End:         payload.End,
		MeetingLink: fmt.Sprintf("https://meet.example/%d", s.nextID),
		Extensions:  []byte(fmt.Sprintf(`{"conferenceId":"conf-%d"}`, s.nextID)),
	}
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *fakeStore) Update(ctx context.Context, eventID string, payload Payload) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, payload)
	if s.updateErr != nil {
		return Event{}, s.updateErr
	}
	ev, ok := s.events[eventID]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	ev.Title = payload.Title
	ev.Start = payload.Start
	ev.End = payload.End
	ev.Extensions = payload.Extensions
	s.events[eventID] = ev
	return ev, nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gets) + len(s.inserts) + len(s.updates)
}

type fakeFactory struct {
	store *fakeStore
	err   error
	built int
}

func (f *fakeFactory) NewStore(ctx context.Context, cred *Credential) (RemoteEventStore, error) {
	f.built++
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

var errUnavailable = errors.New("503 backend unavailable")

type recordingTokenStore struct {
	mu      sync.Mutex
	updates []TokenUpdate
	err     error
}

func (s *recordingTokenStore) UpdateCalendarTokens(ctx context.Context, userID string, update TokenUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
	return s.err
}
