package dto

import (
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

// DisplayTimeLayout renders e.g. "Mar 10, 2026, 09:00 AM".
const DisplayTimeLayout = "Jan 02, 2006, 03:04 PM"

type ListNotificationsRequest struct {
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type NotificationDTO struct {
	ID                 int64     `json:"id"`
	Message            string    `json:"message"`
	Link               string    `json:"link"`
	IsRead             bool      `json:"is_read"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedAtFormatted string    `json:"created_at_formatted"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

func NewNotificationDTO(n *model.Notification) NotificationDTO {
	return NotificationDTO{
		ID:                 n.ID,
		Message:            n.Message,
		Link:               n.Link,
		IsRead:             n.IsRead,
		CreatedAt:          n.CreatedAt,
		CreatedAtFormatted: n.CreatedAt.Format(DisplayTimeLayout),
	}
}

func NewNotificationDTOs(notifications []model.Notification) []NotificationDTO {
	out := make([]NotificationDTO, 0, len(notifications))
	for i := range notifications {
		out = append(out, NewNotificationDTO(&notifications[i]))
	}
	return out
}
