package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
)

const MaxMessageLength = 5000

type MessageService struct {
	logger        *slog.Logger
	store         *storage.Storage
	notifications *NotificationService
	clock         Clock
}

func NewMessageService(deps Dependencies, notifications *NotificationService) *MessageService {
	return &MessageService{
		logger:        deps.Logger,
		store:         deps.Storage,
		notifications: notifications,
		clock:         deps.Clock,
	}
}

// Send stores a message from sender to recipientID and notifies the recipient
// in the same transaction.
func (s *MessageService) Send(ctx context.Context, sender domain.Identity, recipientID int64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("content", "This field may not be blank.")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, domain.NewValidationError("content", "Ensure this field has no more than 5000 characters.")
	}
	if recipientID == sender.UserID {
		return nil, domain.NewValidationError("recipient", "You cannot send a message to yourself.")
	}

	var (
		msg          *model.Message
		notification *model.Notification
	)

	err := s.store.WithTx(ctx, func(tx *storage.Storage) error {
		recipient, err := tx.GetUserByID(ctx, recipientID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("recipient", "Recipient not found")
			}
			return err
		}

		from, err := tx.GetUserByID(ctx, sender.UserID)
		if err != nil {
			return err
		}

		msg = &model.Message{
			SenderID:      from.ID,
			RecipientID:   recipient.ID,
			Content:       content,
			CreatedAt:     s.clock.now(),
			SenderName:    from.DisplayName(),
			RecipientName: recipient.DisplayName(),
		}
		if err := tx.CreateMessage(ctx, msg); err != nil {
			return err
		}

		text, link := newMessageNotification(from)
		notification, err = s.notifications.Enqueue(ctx, tx, recipient.ID, text, link)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Message sent",
		slog.Int64("message_id", msg.ID),
		slog.Int64("sender_id", msg.SenderID),
		slog.Int64("recipient_id", msg.RecipientID),
	)

	s.notifications.Dispatch(ctx, notification)

	return msg, nil
}

// ListBetween returns the caller's thread with otherID, oldest first.
func (s *MessageService) ListBetween(ctx context.Context, actor domain.Identity, otherID int64) ([]model.Message, error) {
	if _, err := s.store.GetUserByID(ctx, otherID); err != nil {
		return nil, err
	}
	return s.store.ListMessagesBetween(ctx, actor.UserID, otherID)
}

// Thread opens the caller's thread with otherID: everything otherID sent is
// marked read first, then the whole thread is returned oldest first.
func (s *MessageService) Thread(ctx context.Context, actor domain.Identity, otherID int64) ([]model.Message, error) {
	var thread []model.Message
	err := s.store.WithTx(ctx, func(tx *storage.Storage) error {
		if _, err := tx.GetUserByID(ctx, otherID); err != nil {
			return err
		}
		if _, err := tx.MarkMessagesRead(ctx, actor.UserID, otherID); err != nil {
			return err
		}
		var err error
		thread, err = tx.ListMessagesBetween(ctx, actor.UserID, otherID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// MarkRead marks everything otherID sent to the caller as read. Repeating it
// changes nothing.
func (s *MessageService) MarkRead(ctx context.Context, actor domain.Identity, otherID int64) (int64, error) {
	return s.store.MarkMessagesRead(ctx, actor.UserID, otherID)
}

func (s *MessageService) UnreadCount(ctx context.Context, actor domain.Identity) (int64, error) {
	return s.store.CountUnreadMessages(ctx, actor.UserID)
}

func (s *MessageService) ListConversations(ctx context.Context, actor domain.Identity) ([]model.Conversation, error) {
	return s.store.ListConversations(ctx, actor.UserID)
}
