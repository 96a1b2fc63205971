package handler

import (
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/realtime"
	"github.com/gin-gonic/gin"
)

// NotificationSocket handles GET /api/v1/ws/notifications
// The connection stays open until the client leaves or the server shuts down;
// pushes arrive through the hub. Hijacked connections outlive the request
// context, so the handler's lifetime context drives the close.
func (h *Handler) NotificationSocket(c *gin.Context) {
	actor := identityFrom(c)

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("Websocket upgrade failed",
			slog.Int64("user_id", actor.UserID),
			slog.Any("error", err),
		)
		return
	}

	realtime.Serve(h.lifetime, h.hub, actor.UserID, ws, h.logger)
}
