// Package service holds the business rules of the job board. Handlers call
// services with the authenticated identity; services own transactions.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
)

// Clock returns the current time. Tests pass a fixed one.
type Clock func() time.Time

// EventPublisher is satisfied by *rabbitmq.Client.
type EventPublisher interface {
	PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error
}

// LiveNotifier is satisfied by *realtime.Hub.
type LiveNotifier interface {
	SendToUser(userID int64, payload []byte) error
}

type Dependencies struct {
	Logger          *slog.Logger
	Storage         *storage.Storage
	Publisher       EventPublisher
	Live            LiveNotifier
	Clock           Clock
	DispatchTimeout time.Duration
}

// Services bundles every service built from one set of dependencies.
type Services struct {
	Accounts      *AccountService
	Jobs          *JobService
	Applications  *ApplicationService
	Messages      *MessageService
	Notifications *NotificationService
}

func New(deps Dependencies, tokens TokenIssuer) *Services {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.DispatchTimeout <= 0 {
		deps.DispatchTimeout = 10 * time.Second
	}

	notifications := NewNotificationService(deps)

	return &Services{
		Accounts:      NewAccountService(deps, tokens),
		Jobs:          NewJobService(deps),
		Applications:  NewApplicationService(deps, notifications),
		Messages:      NewMessageService(deps, notifications),
		Notifications: notifications,
	}
}

// now is the clock reading used for persisted timestamps: UTC at the
// microsecond precision PostgreSQL stores.
func (c Clock) now() time.Time {
	return c().UTC().Truncate(time.Microsecond)
}
