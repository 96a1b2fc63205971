package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/internal/events"
	"github.com/cuongbtq/jobboard-be/internal/realtime"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type NotificationService struct {
	logger          *slog.Logger
	store           *storage.Storage
	publisher       EventPublisher
	live            LiveNotifier
	clock           Clock
	dispatchTimeout time.Duration
	inflight        sync.WaitGroup
}

func NewNotificationService(deps Dependencies) *NotificationService {
	return &NotificationService{
		logger:          deps.Logger,
		store:           deps.Storage,
		publisher:       deps.Publisher,
		live:            deps.Live,
		clock:           deps.Clock,
		dispatchTimeout: deps.DispatchTimeout,
	}
}

// Enqueue appends a notification for userID inside tx. Callers dispatch the
// returned notification once tx has committed.
func (s *NotificationService) Enqueue(ctx context.Context, tx *storage.Storage, userID int64, message, link string) (*model.Notification, error) {
	n := &model.Notification{
		UserID:    userID,
		Message:   message,
		Link:      link,
		CreatedAt: s.clock.now(),
	}

	if err := tx.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// Dispatch pushes committed notifications to live connections and publishes
// them for the delivery worker. It never blocks the caller and never fails it.
func (s *NotificationService) Dispatch(ctx context.Context, notifications ...*model.Notification) {
	for _, n := range notifications {
		if n == nil {
			continue
		}

		s.inflight.Add(1)
		go func(n *model.Notification) {
			defer s.inflight.Done()

			dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dispatchTimeout)
			defer cancel()

			s.dispatch(dispatchCtx, n)
		}(n)
	}
}

// Wait blocks until every dispatch started so far has finished.
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}

type liveFrame struct {
	Type         string               `json:"type"`
	Notification liveNotificationBody `json:"notification"`
}

type liveNotificationBody struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *NotificationService) dispatch(ctx context.Context, n *model.Notification) {
	if s.live != nil {
		frame, err := json.Marshal(liveFrame{
			Type: "notification",
			Notification: liveNotificationBody{
				ID:        n.ID,
				Message:   n.Message,
				Link:      n.Link,
				IsRead:    n.IsRead,
				CreatedAt: n.CreatedAt,
			},
		})
		if err == nil {
			err = s.live.SendToUser(n.UserID, frame)
		}
		if err != nil && !errors.Is(err, realtime.ErrNotConnected) {
			s.logger.Warn("Failed to push notification",
				slog.Int64("notification_id", n.ID),
				slog.Int64("user_id", n.UserID),
				slog.Any("error", err),
			)
		}
	}

	if s.publisher == nil {
		return
	}

	event := events.NewNotificationCreated(n.ID, n.UserID, n.Message, n.Link, n.CreatedAt)
	msg, err := event.Encode()
	if err != nil {
		s.logger.Error("Failed to encode notification event", slog.Any("error", err))
		return
	}

	if err := s.publisher.PublishWithRetry(ctx, msg); err != nil {
		s.logger.Error("Failed to publish notification event",
			slog.Int64("notification_id", n.ID),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}

// NotificationPage is one page of a user's notifications, newest first.
type NotificationPage struct {
	Items []model.Notification
	Next  *storage.Cursor
}

func (s *NotificationService) List(ctx context.Context, actor domain.Identity, cursor *storage.Cursor, pageSize int) (*NotificationPage, error) {
	pageSize = normalizePageSize(pageSize)

	items, err := s.store.ListNotifications(ctx, storage.NotificationFilter{
		UserID:   actor.UserID,
		PageSize: pageSize,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, err
	}

	page := &NotificationPage{Items: items}
	if len(items) > pageSize {
		page.Items = items[:pageSize]
		last := page.Items[pageSize-1]
		page.Next = &storage.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return page, nil
}

// MarkRead marks one of the caller's notifications read. Someone else's
// notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Identity, id int64) (*model.Notification, error) {
	var n *model.Notification
	err := s.store.WithTx(ctx, func(tx *storage.Storage) error {
		var err error
		if n, err = tx.GetNotificationForUser(ctx, actor.UserID, id); err != nil {
			return err
		}
		if _, err = tx.MarkNotificationRead(ctx, actor.UserID, id); err != nil {
			return err
		}
		n.IsRead = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Identity) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, actor.UserID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor domain.Identity) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, actor.UserID)
}

func normalizePageSize(pageSize int) int {
	switch {
	case pageSize <= 0:
		return DefaultPageSize
	case pageSize > MaxPageSize:
		return MaxPageSize
	default:
		return pageSize
	}
}

func newMessageNotification(sender *model.User) (string, string) {
	return fmt.Sprintf("New message from %s", sender.DisplayName()),
		fmt.Sprintf("/messages/%d", sender.ID)
}

func newApplicationNotification(applicant *model.User, job *model.Job) (string, string) {
	return fmt.Sprintf("You have a new application from %s for the job '%s'.", applicant.DisplayName(), job.Title),
		fmt.Sprintf("/employer/jobs/%d/applications", job.ID)
}

func statusChangedNotification(jobTitle string, status domain.ApplicationStatus) (string, string) {
	return fmt.Sprintf("The status of your application for '%s' has been updated to %s.", jobTitle, status),
		"/job-seeker/applications"
}
