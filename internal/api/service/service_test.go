package service_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/internal/api/storage/storagetest"
	"github.com/cuongbtq/jobboard-be/internal/events"
	"github.com/cuongbtq/jobboard-be/internal/realtime"
	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []rabbitmq.Message
}

func (f *fakePublisher) PublishWithRetry(_ context.Context, msg rabbitmq.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) events(t *testing.T) []events.NotificationEvent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]events.NotificationEvent, 0, len(f.messages))
	for _, m := range f.messages {
		event, err := events.DecodeNotificationEvent(m.Body)
		require.NoError(t, err)
		out = append(out, *event)
	}
	return out
}

type fakeLive struct {
	mu     sync.Mutex
	online map[int64]bool
	frames map[int64][][]byte
}

func (f *fakeLive) SendToUser(userID int64, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online[userID] {
		return realtime.ErrNotConnected
	}
	if f.frames == nil {
		f.frames = map[int64][][]byte{}
	}
	f.frames[userID] = append(f.frames[userID], payload)
	return nil
}

func (f *fakeLive) framesFor(userID int64) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[userID]
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID int64, username string, _ domain.Role) (string, time.Time, error) {
	return "token-" + username, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), nil
}

type harness struct {
	store     *storage.Storage
	clock     *storagetest.Clock
	publisher *fakePublisher
	live      *fakeLive
	services  *service.Services
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:     storagetest.NewStorage(t),
		clock:     storagetest.NewClock(),
		publisher: &fakePublisher{},
		live:      &fakeLive{online: map[int64]bool{}},
	}
	h.services = service.New(service.Dependencies{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Storage:   h.store,
		Publisher: h.publisher,
		Live:      h.live,
		Clock:     h.clock.Now,
	}, fakeTokens{})
	t.Cleanup(h.services.Notifications.Wait)

	return h
}

func identity(userID int64, role domain.Role) domain.Identity {
	return domain.Identity{UserID: userID, Role: role}
}

func decodeFrame(t *testing.T, frame []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(frame, &out))
	return out
}
