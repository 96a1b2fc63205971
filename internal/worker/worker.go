// Package worker consumes notification events and delivers the notifications
// they announce, retrying transient failures.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/worker/storage"
	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker is satisfied by *rabbitmq.Client.
type Broker interface {
	Consume(consumerTag string, prefetchCount int) (<-chan amqp.Delivery, error)
	PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error
}

// Config holds worker configuration
type Config struct {
	Logger          *slog.Logger
	Storage         *storage.Storage
	Broker          Broker
	Sender          Sender
	Concurrency     int
	QueueSize       int
	PrefetchCount   int
	MaxAttempts     int
	DeliveryTimeout time.Duration
	RetryDelay      time.Duration
	SweepInterval   time.Duration
	StaleAfter      time.Duration
	SweepBatchSize  int
	Clock           func() time.Time
}

// Worker represents the notification delivery worker
type Worker struct {
	workerID        string
	logger          *slog.Logger
	storage         *storage.Storage
	broker          Broker
	sender          Sender
	concurrency     int
	prefetchCount   int
	maxAttempts     int
	deliveryTimeout time.Duration
	retryDelay      time.Duration
	sweepInterval   time.Duration
	staleAfter      time.Duration
	sweepBatchSize  int
	clock           func() time.Time

	jobsChan chan *task
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// task is one decoded event waiting for a pool goroutine.
type task struct {
	notificationID int64
	eventID        string
	delivery       amqp.Delivery
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	w := &Worker{
		workerID:        fmt.Sprintf("notification-worker-%s", uuid.NewString()[:8]),
		logger:          cfg.Logger,
		storage:         cfg.Storage,
		broker:          cfg.Broker,
		sender:          cfg.Sender,
		concurrency:     max(cfg.Concurrency, 1),
		prefetchCount:   cfg.PrefetchCount,
		maxAttempts:     max(cfg.MaxAttempts, 1),
		deliveryTimeout: cfg.DeliveryTimeout,
		retryDelay:      cfg.RetryDelay,
		sweepInterval:   cfg.SweepInterval,
		staleAfter:      cfg.StaleAfter,
		sweepBatchSize:  cfg.SweepBatchSize,
		clock:           cfg.Clock,
		stopChan:        make(chan struct{}),
		done:            make(chan struct{}),
	}

	if w.deliveryTimeout <= 0 {
		w.deliveryTimeout = 10 * time.Second
	}
	if w.staleAfter <= 0 {
		w.staleAfter = 5 * time.Minute
	}
	if w.sweepBatchSize <= 0 {
		w.sweepBatchSize = 100
	}
	if w.clock == nil {
		w.clock = time.Now
	}
	w.jobsChan = make(chan *task, max(cfg.QueueSize, w.concurrency))

	return w
}

// Start subscribes to the queue and launches the pool, the dispatcher and the
// sweeper. It returns once everything is running; call Stop to shut down.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("max_attempts", w.maxAttempts),
		slog.Duration("delivery_timeout", w.deliveryTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(w.done)
		w.startMessageDispatcher(ctx, deliveries)
	}()

	if w.sweepInterval > 0 {
		w.wg.Add(1)
		go w.sweepLoop(ctx)
	}

	return nil
}

// Done is closed when the dispatcher exits, for example after the broker
// closed the delivery channel.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// now is the clock reading stored in delivery columns.
func (w *Worker) now() time.Time {
	return w.clock().UTC().Truncate(time.Microsecond)
}

// wait sleeps for d unless the worker is stopping. It reports whether the full
// delay elapsed.
func (w *Worker) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-w.stopChan:
		return false
	}
}
