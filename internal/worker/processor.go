package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
)

// processNotification claims the notification, sends it and records the outcome
func (w *Worker) processNotification(ctx context.Context, t *task) error {
	// Step 1: claim (pending → sending)
	n, err := w.storage.ClaimNotification(ctx, t.notificationID, w.now())
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyClaimed) {
			w.logger.Info("Notification already claimed, skipping",
				slog.Int64("notification_id", t.notificationID),
				slog.String("event_id", t.eventID),
			)
			return err
		}
		w.wait(ctx, w.retryDelay)
		return domain.NewRetryableError(err)
	}

	// Step 2: send within the delivery timeout
	sendCtx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
	sendErr := w.sender.Send(sendCtx, n)
	cancel()

	// Step 3: record the outcome
	if sendErr == nil {
		if err := w.storage.MarkDelivered(ctx, n.ID, w.now()); err != nil {
			// The notification went out; redelivering it would duplicate it.
			w.logger.Error("Failed to mark notification delivered",
				slog.Int64("notification_id", n.ID),
				slog.Any("error", err),
			)
		}
		w.logger.Info("Notification delivered",
			slog.Int64("notification_id", n.ID),
			slog.Int64("user_id", n.UserID),
			slog.Int("attempt", n.Attempts),
		)
		return nil
	}

	if errors.Is(sendErr, domain.ErrRejected) || n.Attempts >= w.maxAttempts {
		if err := w.storage.MarkFailed(ctx, n.ID, w.now()); err != nil {
			w.logger.Error("Failed to mark notification failed",
				slog.Int64("notification_id", n.ID),
				slog.Any("error", err),
			)
		}
		if errors.Is(sendErr, domain.ErrRejected) {
			return sendErr
		}
		return fmt.Errorf("%w after %d attempts: %v", domain.ErrMaxRetriesExceeded, n.Attempts, sendErr)
	}

	if err := w.storage.ReleaseClaim(ctx, n.ID, w.now()); err != nil {
		w.logger.Error("Failed to release notification claim",
			slog.Int64("notification_id", n.ID),
			slog.Any("error", err),
		)
	}

	w.logger.Info("Notification will be retried",
		slog.Int64("notification_id", n.ID),
		slog.Int("attempt", n.Attempts),
		slog.Int("max_attempts", w.maxAttempts),
		slog.Duration("retry_delay", w.retryDelay),
	)
	w.wait(ctx, w.retryDelay)

	return domain.NewRetryableError(fmt.Errorf("delivery attempt %d failed: %w", n.Attempts, sendErr))
}
