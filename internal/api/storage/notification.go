package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

const notificationColumns = `id, user_id, message, link, is_read, created_at, delivered_at`

func (s *Storage) CreateNotification(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (user_id, message, link, is_read, created_at)
		VALUES (?, ?, ?, FALSE, ?)
		RETURNING id
	`

	if err := s.get(ctx, &n.ID, query, n.UserID, n.Message, n.Link, n.CreatedAt); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	n.IsRead = false
	return nil
}

// GetNotificationForUser looks the notification up scoped to its owner, so a
// foreign ID is indistinguishable from a missing one.
func (s *Storage) GetNotificationForUser(ctx context.Context, userID, id int64) (*model.Notification, error) {
	var n model.Notification
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ? AND user_id = ?`
	if err := s.get(ctx, &n, query, id, userID); err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("Notification")
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

type NotificationFilter struct {
	UserID   int64
	PageSize int
	Cursor   *Cursor
}

// ListNotifications returns up to PageSize+1 notifications, newest first.
func (s *Storage) ListNotifications(ctx context.Context, filter NotificationFilter) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{filter.UserID}

	if filter.Cursor != nil {
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, filter.PageSize+1)

	notifications := []model.Notification{}
	if err := s.list(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, userID, id int64) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ? AND is_read = FALSE`
	affected, err := s.exec(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return affected, nil
}

func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`
	affected, err := s.exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return affected, nil
}

func (s *Storage) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var n int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`
	if err := s.get(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}
