package threads

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-events/networking/internal/middleware"
	"github.com/aura-events/networking/pkg/response"
)

// OpenRequest is the body for POST /threads.
type OpenRequest struct {
	CounterpartID uuid.UUID  `json:"counterpart_id"`
	EventID       *uuid.UUID `json:"event_id"`
}

// Handler handles thread HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a threads handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Open handles POST /threads. 201 when a thread was created, 200 when it existed.
func (h *Handler) Open(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, created, err := h.svc.Open(c.Request.Context(), middleware.UserID(c), req.CounterpartID, req.EventID)
	if err != nil {
		response.Error(c, err, "failed to open thread")
		return
	}
	if created {
		response.Created(c, t)
		return
	}
	response.OK(c, t)
}
