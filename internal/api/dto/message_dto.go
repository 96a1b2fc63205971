package dto

import (
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient" binding:"required"`
	Content     string `json:"content"`
}

type MessageDTO struct {
	ID            int64     `json:"id"`
	SenderID      int64     `json:"sender"`
	SenderName    string    `json:"sender_name"`
	RecipientID   int64     `json:"recipient"`
	RecipientName string    `json:"recipient_name"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	IsRead        bool      `json:"is_read"`
}

func NewMessageDTO(m *model.Message) MessageDTO {
	return MessageDTO{
		ID:            m.ID,
		SenderID:      m.SenderID,
		SenderName:    m.SenderName,
		RecipientID:   m.RecipientID,
		RecipientName: m.RecipientName,
		Content:       m.Content,
		Timestamp:     m.CreatedAt,
		IsRead:        m.IsRead,
	}
}

func NewMessageDTOs(messages []model.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, NewMessageDTO(&messages[i]))
	}
	return out
}

type ConversationUserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type LastMessageDTO struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsSender  bool      `json:"is_sender"`
}

type ConversationDTO struct {
	User        ConversationUserDTO `json:"user"`
	LastMessage LastMessageDTO      `json:"last_message"`
	UnreadCount int64               `json:"unread_count"`
	Timestamp   time.Time           `json:"timestamp"`
}

// NewConversationDTOs renders conversations from viewerID's side: is_sender
// tells whether the viewer wrote the latest message.
func NewConversationDTOs(conversations []model.Conversation, viewerID int64) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, ConversationDTO{
			User: ConversationUserDTO{
				ID:       c.CounterpartID,
				Username: c.CounterpartUsername,
				FullName: c.CounterpartFullName,
				Role:     c.CounterpartRole.String(),
			},
			LastMessage: LastMessageDTO{
				Content:   c.LastContent,
				Timestamp: c.LastCreatedAt,
				IsSender:  c.LastSenderID == viewerID,
			},
			UnreadCount: c.UnreadCount,
			Timestamp:   c.LastCreatedAt,
		})
	}
	return out
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type UpdatedResponse struct {
	Updated int64 `json:"updated"`
}
