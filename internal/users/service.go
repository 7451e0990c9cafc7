package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobtracker-backend/internal/calendar"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth persists the identity from Google login.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// CalendarCredential returns the stored calendar tokens. Guests and unknown
// users get an empty credential, which never syncs.
func (s *Service) CalendarCredential(ctx context.Context, userID string) (calendar.Credential, error) {
	cred := calendar.Credential{UserID: userID}
	if isGuestID(userID) {
		return cred, nil
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return cred, nil
		}
		return calendar.Credential{}, err
	}
	cred.AccessToken = user.CalendarAccessToken
	cred.RefreshToken = user.CalendarRefreshToken
	if user.CalendarTokenExpiry != nil {
		cred.Expiry = *user.CalendarTokenExpiry
	}
	return cred, nil
}

// UpdateCalendarTokens persists tokens reissued during a calendar call.
func (s *Service) UpdateCalendarTokens(ctx context.Context, userID string, update calendar.TokenUpdate) error {
	tokens := CalendarTokens{AccessToken: update.AccessToken, RefreshToken: update.RefreshToken}
	if update.AccessToken != "" && !update.Expiry.IsZero() {
		expiry := update.Expiry
		tokens.Expiry = &expiry
	}
	return s.SaveCalendarTokens(ctx, userID, tokens)
}

// SaveCalendarTokens stores tokens from the consent callback. A missing
// refresh token keeps the previously stored one.
func (s *Service) SaveCalendarTokens(ctx context.Context, userID string, tokens CalendarTokens) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" || isGuestID(userID) {
		return errors.New("registered user id is required")
	}
	if tokens.AccessToken == "" && tokens.RefreshToken == "" {
		return nil
	}
	return s.Repo.UpdateCalendarTokens(ctx, userID, tokens)
}

func (s *Service) DisconnectCalendar(ctx context.Context, userID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	err := s.Repo.ClearCalendarTokens(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// TokenExpiry converts an oauth2 expiry into the nullable form stored on users.
func TokenExpiry(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isGuestID(userID string) bool {
	return strings.HasPrefix(userID, "guest:")
}

var _ calendar.TokenStore = (*Service)(nil)
var _ calendar.CredentialStore = (*Service)(nil)
