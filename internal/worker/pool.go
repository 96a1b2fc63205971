package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned",
		slog.String("worker_id", w.workerID),
		slog.Int("worker_count", w.concurrency),
	)
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("Worker goroutine stopping", slog.String("worker_name", workerName))
			return

		case <-ctx.Done():
			w.logger.Debug("Worker goroutine stopping - context canceled", slog.String("worker_name", workerName))
			return

		case t := <-w.jobsChan:
			err := w.processNotification(ctx, t)
			w.settle(workerName, t, err)
		}
	}
}

// settle acknowledges the delivery according to the processing outcome.
func (w *Worker) settle(workerName string, t *task, err error) {
	attrs := []any{
		slog.String("worker_name", workerName),
		slog.Int64("notification_id", t.notificationID),
		slog.String("event_id", t.eventID),
	}

	if err == nil || errors.Is(err, domain.ErrAlreadyClaimed) {
		if ackErr := t.delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message", append(attrs, slog.Any("error", ackErr))...)
		}
		return
	}

	requeue := shouldRequeue(err)
	w.logger.Warn("Notification delivery failed",
		append(attrs, slog.Bool("requeue", requeue), slog.Any("error", err))...,
	)

	if nackErr := t.delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message", append(attrs, slog.Any("error", nackErr))...)
	}
}

// shouldRequeue determines if a message should be requeued based on the error type
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrMaxRetriesExceeded) || errors.Is(err, domain.ErrRejected) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
