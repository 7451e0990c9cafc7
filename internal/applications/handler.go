package applications

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications", h.list)
	rg.GET("/applications/:id", h.get)
	rg.POST("/applications", h.create)
	rg.PUT("/applications/:id", h.update)
	rg.DELETE("/applications/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Svc.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		writeError(c, err, "failed to create application")
		return
	}

	annotate(c, res)
	respond.JSON(c, http.StatusCreated, toMutationResponse(res))
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Svc.Update(c.Request.Context(), userID, id, req.input())
	if err != nil {
		writeError(c, err, "failed to update application")
		return
	}

	annotate(c, res)
	respond.OK(c, toMutationResponse(res))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	app, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch application")
		return
	}
	c.Set("applicationId", app.ID)
	respond.OK(c, toResponse(app))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	filter := ListFilter{Limit: defaultListLimit}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filter.Offset = parsed
		}
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status, err := ParseStatus(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid status filter", []map[string]string{
				{"field": "status", "issue": "invalid"},
			})
			return
		}
		filter.Status = status
	}

	apps, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err, "failed to list applications")
		return
	}

	resp := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, toResponse(app))
	}
	respond.OK(c, resp)
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err, "failed to delete application")
		return
	}
	c.Set("applicationId", id)
	respond.OK(c, gin.H{"message": "Application deleted"})
}

// annotate exposes the mutation to the request logger.
func annotate(c *gin.Context, res Result) {
	c.Set("applicationId", res.Application.ID)
	if before := res.PreviousStatus; before != "" && before != res.Application.Status {
		c.Set("statusTransition", string(before)+"->"+string(res.Application.Status))
	}
	if res.Sync != SyncNone {
		c.Set("calendarSync", string(res.Sync))
	}
}

func badRequest(c *gin.Context, err error) {
	msg := "invalid request body"
	if errors.Is(err, ErrInvalidInput) {
		msg = err.Error()
	}
	respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
