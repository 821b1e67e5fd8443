package matching

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/middleware"
	"github.com/aura-events/networking/internal/models"
	"github.com/aura-events/networking/pkg/params"
	"github.com/aura-events/networking/pkg/response"
)

// Handler handles match HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a matching handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /matches?event_id=&status=. Generates matches on first load of a session.
func (h *Handler) List(c *gin.Context) {
	eventID, err := params.OptionalUUID(c.Query("event_id"))
	if err != nil {
		response.BadRequest(c, "invalid event_id")
		return
	}
	var status models.MatchStatus
	if raw := c.Query("status"); raw != "" {
		if status, err = ParseStatus(raw); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	userID := middleware.UserID(c)
	list, err := h.svc.Load(c.Request.Context(), middleware.SessionID(c), userID, eventID)
	if err != nil {
		h.logger.Error("load matches failed", zap.Error(err), zap.String("profile_id", userID.String()))
		response.Error(c, err, "failed to load matches")
		return
	}
	if status != "" {
		response.OK(c, WithStatus(list, status))
		return
	}
	response.OK(c, Visible(list))
}

// Dismiss handles POST /matches/:id/dismiss.
func (h *Handler) Dismiss(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid match id")
		return
	}
	m, err := h.svc.Dismiss(c.Request.Context(), middleware.UserID(c), matchID)
	if err != nil {
		response.Error(c, err, "failed to dismiss match")
		return
	}
	response.OK(c, m)
}
