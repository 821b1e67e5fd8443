package connections

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/middleware"
	"github.com/aura-events/networking/internal/models"
	"github.com/aura-events/networking/pkg/response"
)

// ConnectRequest is the body for POST /requests.
type ConnectRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id"`
	EventID     *uuid.UUID `json:"event_id"`
	MatchID     *uuid.UUID `json:"match_id"`
	Message     string     `json:"message" binding:"max=1000"`
}

// Handler handles request and connection HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a connections handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Connect handles POST /requests.
func (h *Handler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	out, err := h.svc.Connect(c.Request.Context(), middleware.UserID(c), ConnectInput{
		RecipientID: req.RecipientID,
		EventID:     req.EventID,
		MatchID:     req.MatchID,
		Message:     req.Message,
	})
	if err != nil {
		h.logger.Warn("connect failed", zap.Error(err))
		response.Error(c, err, "failed to send request")
		return
	}
	response.Created(c, out)
}

// Accept handles POST /requests/:id/accept.
func (h *Handler) Accept(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	conn, err := h.svc.Accept(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.Error(c, err, "failed to accept request")
		return
	}
	response.OK(c, conn)
}

// Decline handles POST /requests/:id/decline.
func (h *Handler) Decline(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	out, err := h.svc.Decline(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.Error(c, err, "failed to decline request")
		return
	}
	response.OK(c, out)
}

// Withdraw handles POST /requests/:id/withdraw.
func (h *Handler) Withdraw(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	out, err := h.svc.Withdraw(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.Error(c, err, "failed to withdraw request")
		return
	}
	response.OK(c, out)
}

// Cancel handles POST /requests/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	out, err := h.svc.Cancel(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.Error(c, err, "failed to cancel request")
		return
	}
	response.OK(c, out)
}

// ListRequests handles GET /requests?box=received|sent|all&status=.
func (h *Handler) ListRequests(c *gin.Context) {
	box, err := ParseBox(c.Query("box"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var status models.RequestStatus
	if raw := c.Query("status"); raw != "" {
		if status, err = ParseStatus(raw); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	list, err := h.svc.ListRequests(c.Request.Context(), middleware.UserID(c), box)
	if err != nil {
		response.Error(c, err, "failed to list requests")
		return
	}
	if status != "" {
		list = FilterStatus(list, status)
	}
	response.OK(c, list)
}

// ListConnections handles GET /connections.
func (h *Handler) ListConnections(c *gin.Context) {
	list, err := h.svc.ListConnections(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err, "failed to list connections")
		return
	}
	response.OK(c, list)
}

// Remove handles DELETE /connections/:id.
func (h *Handler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid connection id")
		return
	}
	if err := h.svc.RemoveConnection(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.Error(c, err, "failed to remove connection")
		return
	}
	response.NoContent(c)
}

func requestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return uuid.Nil, false
	}
	return id, true
}
