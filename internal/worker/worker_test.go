package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	apistorage "github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/internal/api/storage/storagetest"
	"github.com/cuongbtq/jobboard-be/internal/events"
	workerdomain "github.com/cuongbtq/jobboard-be/internal/worker/domain"
	"github.com/cuongbtq/jobboard-be/internal/worker/storage"
	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker struct {
	deliveries chan amqp.Delivery
	consumeErr error

	mu        sync.Mutex
	published []rabbitmq.Message
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{deliveries: make(chan amqp.Delivery, 10)}
}

func (b *fakeBroker) Consume(string, int) (<-chan amqp.Delivery, error) {
	if b.consumeErr != nil {
		return nil, b.consumeErr
	}
	return b.deliveries, nil
}

func (b *fakeBroker) PublishWithRetry(_ context.Context, msg rabbitmq.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, msg)
	return nil
}

func (b *fakeBroker) events(t *testing.T) []*events.NotificationEvent {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*events.NotificationEvent
	for _, msg := range b.published {
		event, err := events.DecodeNotificationEvent(msg.Body)
		require.NoError(t, err)
		out = append(out, event)
	}
	return out
}

type ackRecord struct {
	tag     uint64
	acked   bool
	requeue bool
}

// fakeAcknowledger stands in for the AMQP channel behind a delivery.
type fakeAcknowledger struct {
	results chan ackRecord
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.results <- ackRecord{tag: tag, acked: true}
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.results <- ackRecord{tag: tag, requeue: requeue}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []int64
	errFn func(attempt int) error
}

func (s *fakeSender) Send(_ context.Context, n *workerdomain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n.ID)
	if s.errFn != nil {
		return s.errFn(n.Attempts)
	}
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type harness struct {
	db      *sqlx.DB
	api     *apistorage.Storage
	store   *storage.Storage
	clock   *storagetest.Clock
	broker  *fakeBroker
	sender  *fakeSender
	worker  *Worker
	user    *model.User
	results chan ackRecord
}

func newHarness(t *testing.T, maxAttempts int) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := storagetest.NewDB(t)

	h := &harness{
		db:      db,
		api:     apistorage.NewStorage(db),
		store:   storage.NewStorage(db, logger),
		clock:   storagetest.NewClock(),
		broker:  newFakeBroker(),
		sender:  &fakeSender{},
		results: make(chan ackRecord, 10),
	}
	h.user = storagetest.CreateUser(t, h.api, "sam", domain.RoleJobSeeker)
	h.worker = NewWorker(&Config{
		Logger:          logger,
		Storage:         h.store,
		Broker:          h.broker,
		Sender:          h.sender,
		Concurrency:     1,
		MaxAttempts:     maxAttempts,
		DeliveryTimeout: time.Second,
		StaleAfter:      5 * time.Minute,
		Clock:           h.clock.Now,
	})

	return h
}

func (h *harness) notify(t *testing.T, message string) *model.Notification {
	t.Helper()
	n := &model.Notification{
		UserID:    h.user.ID,
		Message:   message,
		Link:      "/messages/1",
		CreatedAt: h.clock.Now(),
	}
	require.NoError(t, h.api.CreateNotification(context.Background(), n))
	return n
}

func (h *harness) state(t *testing.T, id int64) (string, int) {
	t.Helper()
	var row struct {
		Status   string `db:"delivery_status"`
		Attempts int    `db:"delivery_attempts"`
	}
	query := h.db.Rebind(`SELECT delivery_status, delivery_attempts FROM notifications WHERE id = ?`)
	require.NoError(t, h.db.GetContext(context.Background(), &row, query, id))
	return row.Status, row.Attempts
}

func (h *harness) delivery(t *testing.T, tag uint64, body []byte) amqp.Delivery {
	t.Helper()
	return amqp.Delivery{
		Acknowledger: &fakeAcknowledger{results: h.results},
		DeliveryTag:  tag,
		Body:         body,
	}
}

func eventBody(t *testing.T, n *model.Notification) []byte {
	t.Helper()
	msg, err := events.NewNotificationCreated(n.ID, n.UserID, n.Message, n.Link, n.CreatedAt).Encode()
	require.NoError(t, err)
	return msg.Body
}

func TestProcessNotification_Delivered(t *testing.T) {
	h := newHarness(t, 3)
	n := h.notify(t, "New message from Alice")

	err := h.worker.processNotification(context.Background(), &task{notificationID: n.ID})
	require.NoError(t, err)

	status, attempts := h.state(t, n.ID)
	assert.Equal(t, workerdomain.DeliveryStatusDelivered, status)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, []int64{n.ID}, h.sender.sent)
}

func TestProcessNotification_DuplicateEvent(t *testing.T) {
	h := newHarness(t, 3)
	n := h.notify(t, "New message from Alice")

	require.NoError(t, h.worker.processNotification(context.Background(), &task{notificationID: n.ID}))

	err := h.worker.processNotification(context.Background(), &task{notificationID: n.ID})
	assert.ErrorIs(t, err, workerdomain.ErrAlreadyClaimed)
	assert.Equal(t, 1, h.sender.count())

	err = h.worker.processNotification(context.Background(), &task{notificationID: 9999})
	assert.ErrorIs(t, err, workerdomain.ErrAlreadyClaimed)
}

func TestProcessNotification_RetriesUntilMaxAttempts(t *testing.T) {
	h := newHarness(t, 2)
	h.sender.errFn = func(int) error { return errors.New("connection refused") }
	n := h.notify(t, "New message from Alice")

	err := h.worker.processNotification(context.Background(), &task{notificationID: n.ID})
	require.Error(t, err)
	assert.True(t, shouldRequeue(err))
	status, attempts := h.state(t, n.ID)
	assert.Equal(t, workerdomain.DeliveryStatusPending, status)
	assert.Equal(t, 1, attempts)

	err = h.worker.processNotification(context.Background(), &task{notificationID: n.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, workerdomain.ErrMaxRetriesExceeded)
	assert.False(t, shouldRequeue(err))
	status, attempts = h.state(t, n.ID)
	assert.Equal(t, workerdomain.DeliveryStatusFailed, status)
	assert.Equal(t, 2, attempts)
}

func TestProcessNotification_SucceedsOnRetry(t *testing.T) {
	h := newHarness(t, 3)
	h.sender.errFn = func(attempt int) error {
		if attempt == 1 {
			return errors.New("timeout")
		}
		return nil
	}
	n := h.notify(t, "New message from Alice")

	require.Error(t, h.worker.processNotification(context.Background(), &task{notificationID: n.ID}))
	require.NoError(t, h.worker.processNotification(context.Background(), &task{notificationID: n.ID}))

	status, attempts := h.state(t, n.ID)
	assert.Equal(t, workerdomain.DeliveryStatusDelivered, status)
	assert.Equal(t, 2, attempts)
}

func TestProcessNotification_Rejected(t *testing.T) {
	h := newHarness(t, 5)
	h.sender.errFn = func(int) error { return fmt.Errorf("%w: status 404", workerdomain.ErrRejected) }
	n := h.notify(t, "New message from Alice")

	err := h.worker.processNotification(context.Background(), &task{notificationID: n.ID})
	assert.ErrorIs(t, err, workerdomain.ErrRejected)
	assert.False(t, shouldRequeue(err))

	status, attempts := h.state(t, n.ID)
	assert.Equal(t, workerdomain.DeliveryStatusFailed, status)
	assert.Equal(t, 1, attempts)
}

func TestShouldRequeue(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable", workerdomain.NewRetryableError(errors.New("boom")), true},
		{"max retries", fmt.Errorf("%w: boom", workerdomain.ErrMaxRetriesExceeded), false},
		{"rejected", fmt.Errorf("%w: 400", workerdomain.ErrRejected), false},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRequeue(tt.err))
		})
	}
}

func TestWorker_ConsumesAndAcknowledges(t *testing.T) {
	h := newHarness(t, 3)
	n := h.notify(t, "New message from Alice")

	require.NoError(t, h.worker.Start(context.Background()))
	t.Cleanup(h.worker.Stop)

	h.broker.deliveries <- h.delivery(t, 1, []byte(`{"type":"job.created"}`))
	h.broker.deliveries <- h.delivery(t, 2, eventBody(t, n))
	h.broker.deliveries <- h.delivery(t, 3, eventBody(t, n))

	got := map[uint64]ackRecord{}
	for len(got) < 3 {
		select {
		case r := <-h.results:
			got[r.tag] = r
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for acknowledgements, got %v", got)
		}
	}

	assert.Equal(t, ackRecord{tag: 1, acked: false, requeue: false}, got[1], "malformed event is dropped")
	assert.True(t, got[2].acked, "delivered")
	assert.True(t, got[3].acked, "duplicate is acknowledged")
	assert.Equal(t, 1, h.sender.count())

	status, _ := h.state(t, n.ID)
	assert.Equal(t, workerdomain.DeliveryStatusDelivered, status)
}

func TestWorker_DoneWhenDeliveriesClose(t *testing.T) {
	h := newHarness(t, 3)

	require.NoError(t, h.worker.Start(context.Background()))
	close(h.broker.deliveries)

	select {
	case <-h.worker.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not report the closed consumer")
	}
	h.worker.Stop()
}

func TestWorker_StartFailsWithoutConsumer(t *testing.T) {
	h := newHarness(t, 3)
	h.broker.consumeErr = errors.New("not connected to RabbitMQ")

	err := h.worker.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start consuming")
}

func TestSweep_RepublishesStaleNotifications(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()

	stale := h.notify(t, "stale")
	delivered := h.notify(t, "delivered")
	require.NoError(t, h.worker.processNotification(ctx, &task{notificationID: delivered.ID}))

	h.clock.Advance(2 * time.Minute)
	fresh := h.notify(t, "fresh")

	h.clock.Advance(4 * time.Minute)

	count, err := h.worker.sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	published := h.broker.events(t)
	require.Len(t, published, 1)
	assert.Equal(t, stale.ID, published[0].NotificationID)
	assert.Equal(t, "stale", published[0].Message)

	status, attempts := h.state(t, stale.ID)
	assert.Equal(t, workerdomain.DeliveryStatusPending, status)
	assert.Equal(t, 0, attempts)

	// The reset refreshed the row, so an immediate second sweep skips it.
	count, err = h.worker.sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	status, _ = h.state(t, fresh.ID)
	assert.Equal(t, workerdomain.DeliveryStatusPending, status)
}

func TestSweep_RecoversAbandonedClaims(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()

	retry := h.notify(t, "retry")
	exhausted := h.notify(t, "exhausted")

	// Simulate a worker that crashed mid-send: claimed rows stuck in sending.
	_, err := h.store.ClaimNotification(ctx, retry.ID, h.clock.Now())
	require.NoError(t, err)
	_, err = h.store.ClaimNotification(ctx, exhausted.ID, h.clock.Now())
	require.NoError(t, err)
	require.NoError(t, h.store.ReleaseClaim(ctx, exhausted.ID, h.clock.Now()))
	_, err = h.store.ClaimNotification(ctx, exhausted.ID, h.clock.Now())
	require.NoError(t, err)

	h.clock.Advance(10 * time.Minute)

	count, err := h.worker.sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	status, attempts := h.state(t, retry.ID)
	assert.Equal(t, workerdomain.DeliveryStatusPending, status)
	assert.Equal(t, 1, attempts)

	status, attempts = h.state(t, exhausted.ID)
	assert.Equal(t, workerdomain.DeliveryStatusFailed, status)
	assert.Equal(t, 2, attempts)

	published := h.broker.events(t)
	require.Len(t, published, 1)
	assert.Equal(t, retry.ID, published[0].NotificationID)
}
