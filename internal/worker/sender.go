package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
)

// Sender delivers one claimed notification outside the application.
type Sender interface {
	Send(ctx context.Context, n *domain.Notification) error
}

// WebhookSender posts each notification as JSON to a fixed URL.
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *WebhookSender) Send(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", fmt.Sprintf("notification-%d", n.ID))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: webhook returned status %d", domain.ErrRejected, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// LogSender records deliveries in the log. It is used when no webhook is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, n *domain.Notification) error {
	s.logger.Info("Notification delivered",
		slog.Int64("notification_id", n.ID),
		slog.Int64("user_id", n.UserID),
		slog.String("message", n.Message),
		slog.String("link", n.Link),
	)
	return nil
}
