package meetings

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/middleware"
	"github.com/aura-events/networking/internal/models"
	"github.com/aura-events/networking/pkg/response"
)

// ScheduleRequest is the body for POST /meetings.
type ScheduleRequest struct {
	MeetingID     *uuid.UUID           `json:"meeting_id"`
	CounterpartID uuid.UUID            `json:"counterpart_id"`
	Reschedule    bool                 `json:"reschedule"`
	Format        models.MeetingFormat `json:"format"`
	Date          string               `json:"date"`
	Time          string               `json:"time"`
	EventID       *uuid.UUID           `json:"event_id"`
	SessionID     *uuid.UUID           `json:"session_id"`
	Message       string               `json:"message" binding:"max=1000"`
}

// Handler handles meeting HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a meetings handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Schedule handles POST /meetings. With meeting_id, or reschedule set, it reschedules.
func (h *Handler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.svc.Schedule(c.Request.Context(), middleware.UserID(c), ScheduleInput{
		MeetingID:     req.MeetingID,
		CounterpartID: req.CounterpartID,
		Reschedule:    req.Reschedule,
		Format:        req.Format,
		Date:          req.Date,
		Time:          req.Time,
		EventID:       req.EventID,
		SessionID:     req.SessionID,
		Message:       req.Message,
	})
	if err != nil {
		h.logger.Warn("schedule meeting failed", zap.Error(err))
		response.Error(c, err, "failed to schedule meeting")
		return
	}
	if req.MeetingID != nil || req.Reschedule {
		response.OK(c, m)
		return
	}
	response.Created(c, m)
}

// Confirm handles POST /meetings/:id/confirm.
func (h *Handler) Confirm(c *gin.Context) { h.act(c, h.svc.Confirm, "failed to confirm meeting") }

// Decline handles POST /meetings/:id/decline.
func (h *Handler) Decline(c *gin.Context) { h.act(c, h.svc.Decline, "failed to decline meeting") }

// Cancel handles POST /meetings/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) { h.act(c, h.svc.Cancel, "failed to cancel meeting") }

type actionFunc func(ctx context.Context, actorID, meetingID uuid.UUID) (*models.Meeting, error)

func (h *Handler) act(c *gin.Context, fn actionFunc, fallback string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	m, err := fn(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.Error(c, err, fallback)
		return
	}
	response.OK(c, m)
}

// List handles GET /meetings.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err, "failed to list meetings")
		return
	}
	response.OK(c, list)
}

// Join handles GET /meetings/:id/join.
func (h *Handler) Join(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	info, err := h.svc.Join(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.Error(c, err, "failed to join meeting")
		return
	}
	response.OK(c, info)
}

// CatalogEvents handles GET /meetings/catalog/events?country=&date=.
func (h *Handler) CatalogEvents(c *gin.Context) {
	page, err := h.svc.CatalogEvents(c.Request.Context(), CatalogFilter{
		Country: c.Query("country"),
		Date:    c.Query("date"),
	})
	if err != nil {
		response.Error(c, err, "failed to list events")
		return
	}
	response.OK(c, page)
}

// CatalogSessions handles GET /meetings/catalog/events/:id/sessions.
func (h *Handler) CatalogSessions(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	slots, err := h.svc.CatalogSessions(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err, "failed to list sessions")
		return
	}
	response.OK(c, slots)
}
