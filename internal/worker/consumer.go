package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer starts a manual-ack consumer tagged with the worker ID
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	deliveries, err := w.broker.Consume(w.workerID, w.prefetchCount)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	return deliveries, nil
}

// startMessageDispatcher decodes deliveries and hands them to the worker pool
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case <-w.stopChan:
			w.logger.Info("Message dispatcher stopped - worker stopping")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			event, err := events.DecodeNotificationEvent(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping malformed notification event",
					slog.String("message_id", delivery.MessageId),
					slog.Any("error", err),
				)
				// Redelivering a malformed message can never succeed.
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.Any("error", nackErr),
					)
				}
				continue
			}

			t := &task{
				notificationID: event.NotificationID,
				eventID:        event.EventID,
				delivery:       delivery,
			}

			select {
			case w.jobsChan <- t:
				w.logger.Debug("Notification dispatched to worker pool",
					slog.Int64("notification_id", t.notificationID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.requeueOnShutdown(delivery)
				return
			case <-w.stopChan:
				w.requeueOnShutdown(delivery)
				return
			}
		}
	}
}

func (w *Worker) requeueOnShutdown(delivery amqp.Delivery) {
	w.logger.Info("Message dispatcher stopped while dispatching")
	if err := delivery.Nack(false, true); err != nil {
		w.logger.Error("Failed to NACK message on shutdown",
			slog.Any("error", err),
		)
	}
}
