// Package events defines the messages exchanged between the API and the worker.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
	"github.com/google/uuid"
)

const NotificationCreated = "notification.created"

// NotificationEvent announces a committed notification row. The worker uses
// NotificationID to claim delivery, so duplicates are harmless.
type NotificationEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Message        string    `json:"message"`
	Link           string    `json:"link"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewNotificationCreated builds an event with a fresh EventID.
func NewNotificationCreated(notificationID, userID int64, message, link string, createdAt time.Time) NotificationEvent {
	return NotificationEvent{
		EventID:        uuid.NewString(),
		Type:           NotificationCreated,
		NotificationID: notificationID,
		UserID:         userID,
		Message:        message,
		Link:           link,
		CreatedAt:      createdAt,
	}
}

// Encode wraps the event as a persistent JSON publishing.
func (e NotificationEvent) Encode() (rabbitmq.Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return rabbitmq.Message{}, fmt.Errorf("failed to encode event: %w", err)
	}

	return rabbitmq.Message{
		ID:          e.EventID,
		Type:        e.Type,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

func DecodeNotificationEvent(body []byte) (*NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	if event.Type != NotificationCreated {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}

	if event.NotificationID <= 0 || event.UserID <= 0 {
		return nil, fmt.Errorf("event %s is missing notification or user id", event.EventID)
	}

	return &event, nil
}
