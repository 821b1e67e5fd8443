package networking

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/middleware"
	"github.com/aura-events/networking/pkg/params"
	"github.com/aura-events/networking/pkg/response"
)

// Handler serves the hub snapshot.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a networking handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Get handles GET /networking?event_id=.
func (h *Handler) Get(c *gin.Context) {
	eventID, err := params.OptionalUUID(c.Query("event_id"))
	if err != nil {
		response.BadRequest(c, "invalid event_id")
		return
	}
	userID := middleware.UserID(c)
	snap, err := h.svc.Snapshot(c.Request.Context(), middleware.SessionID(c), userID, eventID)
	if err != nil {
		h.logger.Error("networking snapshot failed", zap.Error(err), zap.String("profile_id", userID.String()))
		response.Error(c, err, "failed to load networking data")
		return
	}
	response.OK(c, snap)
}
