package handler

import (
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /api/v1/notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	cursor, err := DecodeCursor(req.Cursor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.services.Notifications.List(c.Request.Context(), identityFrom(c), cursor, req.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListNotificationsResponse{
		Notifications: dto.NewNotificationDTOs(page.Items),
		NextCursor:    EncodeCursor(page.Next),
	})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	n, err := h.services.Notifications.MarkRead(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewNotificationDTO(n))
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/mark-all-read
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.services.Notifications.MarkAllRead(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UpdatedResponse{Updated: updated})
}

// UnreadNotificationCount handles GET /api/v1/notifications/unread-count
func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	count, err := h.services.Notifications.UnreadCount(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}
