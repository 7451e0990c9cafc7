package calendar

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
	"jobtracker-backend/internal/shared/telemetry"
)

// CredentialStore loads and clears a principal's calendar tokens.
type CredentialStore interface {
	CalendarCredential(ctx context.Context, userID string) (Credential, error)
	DisconnectCalendar(ctx context.Context, userID string) error
}

// Handler serves calendar connection and manual event routes.
type Handler struct {
	Creds   CredentialStore
	Stores  StoreFactory
	Payload PayloadOptions
}

// NewHandler constructs a Handler.
func NewHandler(creds CredentialStore, stores StoreFactory, opts PayloadOptions) *Handler {
	return &Handler{Creds: creds, Stores: stores, Payload: opts}
}

// RegisterRoutes attaches calendar routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/calendar/status", h.status)
	rg.DELETE("/calendar/connection", h.disconnect)
	rg.POST("/calendar/events", h.createEvent)
}

func (h *Handler) principal(c *gin.Context) (string, bool) {
	if h.Creds == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return "", false
	}
	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" || middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return "", false
	}
	return userID, true
}

func (h *Handler) status(c *gin.Context) {
	userID, ok := h.principal(c)
	if !ok {
		return
	}
	cred, err := h.Creds.CalendarCredential(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load calendar status", nil)
		return
	}
	respond.OK(c, gin.H{"connected": cred.HasTokens()})
}

func (h *Handler) disconnect(c *gin.Context) {
	userID, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.Creds.DisconnectCalendar(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to disconnect calendar", nil)
		return
	}
	respond.OK(c, gin.H{"connected": false})
}

type createEventRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	MeetLink      string    `json:"meetLink"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
}

func (h *Handler) createEvent(c *gin.Context) {
	userID, ok := h.principal(c)
	if !ok {
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", []map[string]string{
			{"field": "title", "issue": "required"},
		})
		return
	}
	if req.StartDateTime.IsZero() || req.EndDateTime.IsZero() || !req.EndDateTime.After(req.StartDateTime) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "endDateTime must be after startDateTime", []map[string]string{
			{"field": "endDateTime", "issue": "invalid"},
		})
		return
	}

	ctx := c.Request.Context()
	cred, err := h.Creds.CalendarCredential(ctx, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load calendar credential", nil)
		return
	}
	if !cred.HasTokens() {
		respond.Error(c, http.StatusBadRequest, "calendar_not_connected", "User is not connected to Google Calendar", nil)
		return
	}
	if h.Stores == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "calendar not configured", nil)
		return
	}
	store, err := h.Stores.NewStore(ctx, &cred)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "calendar not configured", nil)
		return
	}

	opts := h.Payload.withDefaults()
	description := req.Description
	if link := strings.TrimSpace(req.MeetLink); link != "" {
		description += "\n\nMeeting Link: " + link
	}
	ev, err := store.Insert(ctx, Payload{
		Title:       req.Title,
		Description: description,
		Start:       req.StartDateTime.UTC(),
		End:         req.EndDateTime.UTC(),
		TimeZone:    opts.TimeZone,
		Reminders:   DefaultReminders,
	})
	if err != nil {
		telemetry.Warn("calendar.event.create_failed", map[string]any{
			"user_id": userID,
			"error":   telemetry.ErrString(err),
		})
		if errors.Is(err, ErrUnauthorized) {
			respond.Error(c, http.StatusUnauthorized, "calendar_unauthorized", "Token expired or invalid. Please reconnect Google Calendar.", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "calendar_error", "Failed to create event", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"link":    ev.HTMLLink,
		"eventId": ev.ID,
	})
}
