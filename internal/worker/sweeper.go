package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/events"
	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
)

// sweepLoop periodically recovers notifications whose event was lost or whose
// claim was abandoned by a crashed worker.
func (w *Worker) sweepLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.sweep(ctx); err != nil {
				w.logger.Error("Notification sweep failed", slog.Any("error", err))
			}
		}
	}
}

// sweep republishes stale notifications and fails those that already used
// every attempt. It returns how many notifications were republished.
func (w *Worker) sweep(ctx context.Context) (int, error) {
	now := w.now()
	cutoff := now.Add(-w.staleAfter)

	stale, err := w.storage.ListStale(ctx, cutoff, w.sweepBatchSize)
	if err != nil {
		return 0, err
	}

	republished := 0
	for i := range stale {
		n := &stale[i]

		status := domain.DeliveryStatusPending
		if n.Attempts >= w.maxAttempts {
			status = domain.DeliveryStatusFailed
		}

		reset, err := w.storage.ResetStale(ctx, n.ID, status, cutoff, now)
		if err != nil {
			return republished, err
		}
		if !reset {
			continue
		}

		if status == domain.DeliveryStatusFailed {
			w.logger.Warn("Abandoned notification exhausted its attempts",
				slog.Int64("notification_id", n.ID),
				slog.Int("attempts", n.Attempts),
			)
			continue
		}

		event := events.NewNotificationCreated(n.ID, n.UserID, n.Message, n.Link, n.CreatedAt)
		msg, err := event.Encode()
		if err != nil {
			return republished, err
		}

		if err := w.broker.PublishWithRetry(ctx, msg); err != nil {
			// The row keeps its fresh timestamp and is picked up by a later sweep.
			w.logger.Error("Failed to republish notification event",
				slog.Int64("notification_id", n.ID),
				slog.Any("error", err),
			)
			continue
		}
		republished++
	}

	if republished > 0 {
		w.logger.Info("Republished stale notifications",
			slog.Int("count", republished),
			slog.Int("scanned", len(stale)),
		)
	}

	return republished, nil
}
