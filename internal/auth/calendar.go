package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/users"
)

// CalendarTokenSaver stores tokens granted on the calendar consent screen.
type CalendarTokenSaver interface {
	SaveCalendarTokens(ctx context.Context, userID string, tokens users.CalendarTokens) error
}

// CalendarConsent runs the offline-access consent flow for Google Calendar.
type CalendarConsent struct {
	oauthConfig  *oauth2.Config
	tokens       CalendarTokenSaver
	dashboardURL string
	stateTTL     time.Duration
	stateStore   *stateStore
}

// NewCalendarConsent builds a CalendarConsent. cfg must request the calendar
// scope and point at the calendar callback.
func NewCalendarConsent(cfg *oauth2.Config, tokens CalendarTokenSaver, dashboardURL string) *CalendarConsent {
	return &CalendarConsent{
		oauthConfig:  cfg,
		tokens:       tokens,
		dashboardURL: dashboardURL,
		stateTTL:     10 * time.Minute,
		stateStore:   newStateStore(),
	}
}

// RegisterRoutes attaches the consent routes. The callback path sits under
// the public auth prefix.
func (s *CalendarConsent) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/calendar/connect", s.connect)
	rg.GET("/auth/google/calendar/callback", s.callback)
}

func (s *CalendarConsent) connect(c *gin.Context) {
	if !configured(s.oauthConfig) {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google Calendar not configured", nil)
		return
	}
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" || middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	state := uuid.NewString()
	s.stateStore.put(state, userID, time.Now().Add(s.stateTTL))

	url := s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	respond.OK(c, gin.H{"url": url})
}

func (s *CalendarConsent) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	userID, ok := s.stateStore.consume(state)
	if !ok || code == "" || userID == "" {
		s.fail(c, userID, "invalid or expired state")
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		s.fail(c, userID, telemetry.ErrString(err))
		return
	}

	// Google omits the refresh token on repeat consent; keep the stored one.
	err = s.tokens.SaveCalendarTokens(ctx, userID, users.CalendarTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       users.TokenExpiry(token.Expiry),
	})
	if err != nil {
		s.fail(c, userID, telemetry.ErrString(err))
		return
	}

	telemetry.Info("calendar.connected", map[string]any{
		"user_id":       userID,
		"refresh_token": token.RefreshToken != "",
	})
	s.redirect(c, "calendar_connected", "true")
}

func (s *CalendarConsent) fail(c *gin.Context, userID, reason string) {
	telemetry.Warn("calendar.connect_failed", map[string]any{
		"user_id": userID,
		"error":   reason,
	})
	s.redirect(c, "error", "calendar_failed")
}

func (s *CalendarConsent) redirect(c *gin.Context, key, value string) {
	target, err := withQuery(s.dashboardURL, key, value)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}
