package domain

import "time"

// Notification is the part of a notification row the worker delivers.
type Notification struct {
	ID        int64     `db:"id" json:"notification_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	Link      string    `db:"link" json:"link"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Attempts  int       `db:"delivery_attempts" json:"attempt"`
}
