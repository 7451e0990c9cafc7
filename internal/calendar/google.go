package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	defaultCalendarID    = "primary"
	defaultClientTimeout = 15 * time.Second
	conferenceType       = "hangoutsMeet"
)

// OAuthConfig returns the OAuth client used for calendar consent and for
// refreshing calendar tokens.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{calendarapi.CalendarScope},
		Endpoint:     google.Endpoint,
	}
}

// ClientFactory builds credential-scoped Google Calendar stores.
type ClientFactory struct {
	OAuth      *oauth2.Config
	CalendarID string
	Tokens     TokenStore
	Timeout    time.Duration
	// Endpoint overrides the Calendar API base URL (tests).
	Endpoint string
}

// NewStore returns a store whose HTTP client refreshes tokens through its own
// observer bound to cred.
func (f *ClientFactory) NewStore(ctx context.Context, cred *Credential) (RemoteEventStore, error) {
	if f == nil || f.OAuth == nil {
		return nil, errors.New("calendar oauth not configured")
	}
	if cred == nil {
		return nil, errors.New("calendar credential required")
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	initial := cred.token()
	observer := NewTokenObserver(cred, f.Tokens)
	source := newObservingTokenSource(ctx, f.OAuth.TokenSource(ctx, initial), initial, observer)

	// oauth2.NewClient keeps only the Transport of the context client, so the
	// API client needs its own bound.
	hc := oauth2.NewClient(ctx, source)
	hc.Timeout = timeout
	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if f.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.Endpoint))
	}
	svc, err := calendarapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return NewGoogleEventStore(svc, f.CalendarID), nil
}

// GoogleEventStore implements RemoteEventStore on Calendar API v3.
type GoogleEventStore struct {
	svc        *calendarapi.Service
	calendarID string
}

// NewGoogleEventStore wraps svc. An empty calendarID means the primary calendar.
func NewGoogleEventStore(svc *calendarapi.Service, calendarID string) *GoogleEventStore {
	if strings.TrimSpace(calendarID) == "" {
		calendarID = defaultCalendarID
	}
	return &GoogleEventStore{svc: svc, calendarID: calendarID}
}

// Get fetches an event. Deleted and cancelled events report ErrEventNotFound.
func (s *GoogleEventStore) Get(ctx context.Context, eventID string) (Event, error) {
	ev, err := s.svc.Events.Get(s.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return Event{}, classify("get event", err)
	}
	if ev.Status == "cancelled" {
		return Event{}, fmt.Errorf("get event %s: %w", eventID, ErrEventNotFound)
	}
	return fromAPI(ev)
}

// Insert creates an event, asking for a Meet link when requested.
func (s *GoogleEventStore) Insert(ctx context.Context, payload Payload) (Event, error) {
	body, err := toAPI(payload)
	if err != nil {
		return Event{}, err
	}
	ev, err := s.svc.Events.Insert(s.calendarID, body).ConferenceDataVersion(1).Context(ctx).Do()
	if err != nil {
		return Event{}, classify("insert event", err)
	}
	return fromAPI(ev)
}

// Update replaces an event in place.
func (s *GoogleEventStore) Update(ctx context.Context, eventID string, payload Payload) (Event, error) {
	body, err := toAPI(payload)
	if err != nil {
		return Event{}, err
	}
	ev, err := s.svc.Events.Update(s.calendarID, eventID, body).ConferenceDataVersion(1).Context(ctx).Do()
	if err != nil {
		return Event{}, classify("update event", err)
	}
	return fromAPI(ev)
}

func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%s: %w: %v", op, ErrEventNotFound, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
		}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toAPI(p Payload) (*calendarapi.Event, error) {
	ev := &calendarapi.Event{
		Summary:     p.Title,
		Description: p.Description,
		Start:       &calendarapi.EventDateTime{DateTime: p.Start.Format(time.RFC3339), TimeZone: p.TimeZone},
		End:         &calendarapi.EventDateTime{DateTime: p.End.Format(time.RFC3339), TimeZone: p.TimeZone},
	}
	if len(p.Reminders) > 0 {
		overrides := make([]*calendarapi.EventReminder, 0, len(p.Reminders))
		for _, r := range p.Reminders {
			overrides = append(overrides, &calendarapi.EventReminder{Method: r.Method, Minutes: r.Minutes})
		}
		ev.Reminders = &calendarapi.EventReminders{
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}
	switch {
	case len(p.Extensions) > 0:
		var conference calendarapi.ConferenceData
		if err := json.Unmarshal(p.Extensions, &conference); err != nil {
			return nil, fmt.Errorf("decode conference data: %w", err)
		}
		ev.ConferenceData = &conference
	case p.RequestConference:
		ev.ConferenceData = &calendarapi.ConferenceData{
			CreateRequest: &calendarapi.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendarapi.ConferenceSolutionKey{Type: conferenceType},
			},
		}
	}
	return ev, nil
}

func fromAPI(ev *calendarapi.Event) (Event, error) {
	out := Event{
		ID:          ev.Id,
		Title:       ev.Summary,
		Description: ev.Description,
		HTMLLink:    ev.HtmlLink,
		MeetingLink: meetingLink(ev),
	}
	if ev.Start != nil {
		out.Start, _ = time.Parse(time.RFC3339, ev.Start.DateTime)
	}
	if ev.End != nil {
		out.End, _ = time.Parse(time.RFC3339, ev.End.DateTime)
	}
	if ev.ConferenceData != nil {
		raw, err := json.Marshal(ev.ConferenceData)
		if err != nil {
			return Event{}, fmt.Errorf("encode conference data: %w", err)
		}
		out.Extensions = raw
	}
	return out, nil
}

func meetingLink(ev *calendarapi.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData == nil {
		return ""
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep != nil && ep.EntryPointType == "video" && ep.Uri != "" {
			return ep.Uri
		}
	}
	return ""
}

var _ RemoteEventStore = (*GoogleEventStore)(nil)
var _ StoreFactory = (*ClientFactory)(nil)
