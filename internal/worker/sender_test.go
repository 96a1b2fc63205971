package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSender(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantErr      bool
		wantRejected bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "accepted", status: http.StatusAccepted},
		{name: "not found is permanent", status: http.StatusNotFound, wantErr: true, wantRejected: true},
		{name: "bad request is permanent", status: http.StatusBadRequest, wantErr: true, wantRejected: true},
		{name: "throttled is transient", status: http.StatusTooManyRequests, wantErr: true},
		{name: "server error is transient", status: http.StatusBadGateway, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received map[string]any
			var idempotencyKey string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				idempotencyKey = r.Header.Get("Idempotency-Key")
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			sender := NewWebhookSender(server.URL, time.Second)
			err := sender.Send(context.Background(), &domain.Notification{
				ID:       7,
				UserID:   3,
				Message:  "New message from Alice",
				Link:     "/messages/1",
				Attempts: 2,
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantRejected, errors.Is(err, domain.ErrRejected))
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, "notification-7", idempotencyKey)
			assert.Equal(t, float64(7), received["notification_id"])
			assert.Equal(t, float64(3), received["user_id"])
			assert.Equal(t, "New message from Alice", received["message"])
			assert.Equal(t, float64(2), received["attempt"])
		})
	}
}

func TestWebhookSender_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewWebhookSender(url, time.Second).Send(context.Background(), &domain.Notification{ID: 1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRejected)
}

func TestLogSender(t *testing.T) {
	sender := NewLogSender(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, sender.Send(context.Background(), &domain.Notification{ID: 1}))
}
