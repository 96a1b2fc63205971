package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

const deliveryColumns = `id, user_id, message, link, created_at, delivery_attempts`

// Storage handles the delivery bookkeeping on the notifications table
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// ClaimNotification moves a pending notification to sending and counts the
// attempt. Only one worker can win the claim for a given row.
func (s *Storage) ClaimNotification(ctx context.Context, id int64, now time.Time) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET delivery_status = ?,
		    delivery_attempts = delivery_attempts + 1,
		    delivery_updated_at = ?
		WHERE id = ?
		  AND delivery_status = ?
	`

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), domain.DeliveryStatusSending, now, id, domain.DeliveryStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to claim notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, domain.ErrAlreadyClaimed
	}

	var n domain.Notification
	query = `SELECT ` + deliveryColumns + ` FROM notifications WHERE id = ?`
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("failed to load claimed notification: %w", err)
	}

	s.logger.Debug("Notification claimed",
		slog.Int64("notification_id", id),
		slog.Int("attempt", n.Attempts),
	)

	return &n, nil
}

func (s *Storage) MarkDelivered(ctx context.Context, id int64, now time.Time) error {
	query := `
		UPDATE notifications
		SET delivery_status = ?, delivered_at = ?, delivery_updated_at = ?
		WHERE id = ? AND delivery_status = ?
	`
	return s.finishClaim(ctx, query, id, domain.DeliveryStatusDelivered, now, now, id, domain.DeliveryStatusSending)
}

// ReleaseClaim hands a notification back to pending after a failed attempt.
func (s *Storage) ReleaseClaim(ctx context.Context, id int64, now time.Time) error {
	query := `
		UPDATE notifications
		SET delivery_status = ?, delivery_updated_at = ?
		WHERE id = ? AND delivery_status = ?
	`
	return s.finishClaim(ctx, query, id, domain.DeliveryStatusPending, now, id, domain.DeliveryStatusSending)
}

func (s *Storage) MarkFailed(ctx context.Context, id int64, now time.Time) error {
	query := `
		UPDATE notifications
		SET delivery_status = ?, delivery_updated_at = ?
		WHERE id = ? AND delivery_status = ?
	`
	return s.finishClaim(ctx, query, id, domain.DeliveryStatusFailed, now, id, domain.DeliveryStatusSending)
}

func (s *Storage) finishClaim(ctx context.Context, query string, id int64, status string, args ...any) error {
	args = append([]any{status}, args...)

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s: %w", status, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// The sweeper reclaimed the row while this attempt was running.
		s.logger.Warn("Notification no longer claimed",
			slog.Int64("notification_id", id),
			slog.String("status", status),
		)
	}

	return nil
}

// ListStale returns pending or sending notifications untouched since cutoff,
// oldest first.
func (s *Storage) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]domain.Notification, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM notifications
		WHERE delivery_status IN (?, ?)
		  AND COALESCE(delivery_updated_at, created_at) < ?
		ORDER BY created_at, id
		LIMIT ?
	`

	notifications := []domain.Notification{}
	err := s.db.SelectContext(ctx, &notifications, s.db.Rebind(query),
		domain.DeliveryStatusPending, domain.DeliveryStatusSending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale notifications: %w", err)
	}

	return notifications, nil
}

// ResetStale moves a stale notification to status, provided nobody touched it
// after cutoff. It reports whether the row was updated.
func (s *Storage) ResetStale(ctx context.Context, id int64, status string, cutoff, now time.Time) (bool, error) {
	query := `
		UPDATE notifications
		SET delivery_status = ?, delivery_updated_at = ?
		WHERE id = ?
		  AND delivery_status IN (?, ?)
		  AND COALESCE(delivery_updated_at, created_at) < ?
	`

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		status, now, id, domain.DeliveryStatusPending, domain.DeliveryStatusSending, cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to reset stale notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
