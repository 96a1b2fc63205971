package handler

import (
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/gin-gonic/gin"
)

// SendMessage handles POST /api/v1/messages
func (h *Handler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	msg, err := h.services.Messages.Send(c.Request.Context(), identityFrom(c), req.RecipientID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewMessageDTO(msg))
}

// GetThread handles GET /api/v1/messages/:user_id
// Opening a thread marks the other user's messages as read unless mark_read=false.
func (h *Handler) GetThread(c *gin.Context) {
	otherID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	var thread []model.Message
	var err error
	if c.Query("mark_read") == "false" {
		thread, err = h.services.Messages.ListBetween(c.Request.Context(), identityFrom(c), otherID)
	} else {
		thread, err = h.services.Messages.Thread(c.Request.Context(), identityFrom(c), otherID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageDTOs(thread))
}

// MarkThreadRead handles POST /api/v1/messages/:user_id/read
func (h *Handler) MarkThreadRead(c *gin.Context) {
	otherID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	updated, err := h.services.Messages.MarkRead(c.Request.Context(), identityFrom(c), otherID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UpdatedResponse{Updated: updated})
}

// UnreadMessageCount handles GET /api/v1/messages/unread-count
func (h *Handler) UnreadMessageCount(c *gin.Context) {
	count, err := h.services.Messages.UnreadCount(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

// ListConversations handles GET /api/v1/conversations
func (h *Handler) ListConversations(c *gin.Context) {
	actor := identityFrom(c)

	conversations, err := h.services.Messages.ListConversations(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewConversationDTOs(conversations, actor.UserID))
}
