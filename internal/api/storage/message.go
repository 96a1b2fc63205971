package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

func (s *Storage) CreateMessage(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (sender_id, recipient_id, content, is_read, created_at)
		VALUES (?, ?, ?, FALSE, ?)
		RETURNING id
	`

	if err := s.get(ctx, &msg.ID, query, msg.SenderID, msg.RecipientID, msg.Content, msg.CreatedAt); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	msg.IsRead = false
	return nil
}

// ListMessagesBetween returns both directions of the conversation, oldest first.
func (s *Storage) ListMessagesBetween(ctx context.Context, userA, userB int64) ([]model.Message, error) {
	query := `
		SELECT
			m.id, m.sender_id, m.recipient_id, m.content, m.is_read, m.created_at,
			COALESCE(NULLIF(su.full_name, ''), su.username) AS sender_name,
			COALESCE(NULLIF(ru.full_name, ''), ru.username) AS recipient_name
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.recipient_id
		WHERE (m.sender_id = ? AND m.recipient_id = ?)
		   OR (m.sender_id = ? AND m.recipient_id = ?)
		ORDER BY m.created_at ASC, m.id ASC
	`

	messages := []model.Message{}
	if err := s.list(ctx, &messages, query, userA, userB, userB, userA); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// MarkMessagesRead flips every unread message from sender to recipient in one
// conditional update and returns how many rows changed.
func (s *Storage) MarkMessagesRead(ctx context.Context, recipientID, senderID int64) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE recipient_id = ? AND sender_id = ? AND is_read = FALSE
	`

	affected, err := s.exec(ctx, query, recipientID, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return affected, nil
}

func (s *Storage) CountUnreadMessages(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	query := `SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND is_read = FALSE`
	if err := s.get(ctx, &n, query, recipientID); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

// ListConversations derives the caller's conversations from the message table
// in a single query: one row per counterpart with the newest message in either
// direction and the number of unread messages the counterpart sent.
func (s *Storage) ListConversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	query := `
		WITH scoped AS (
			SELECT
				id, recipient_id, is_read, created_at,
				CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END AS counterpart_id
			FROM messages
			WHERE sender_id = ? OR recipient_id = ?
		),
		ranked AS (
			SELECT
				id, counterpart_id,
				ROW_NUMBER() OVER (
					PARTITION BY counterpart_id ORDER BY created_at DESC, id DESC
				) AS rn,
				SUM(CASE WHEN recipient_id = ? AND is_read = FALSE THEN 1 ELSE 0 END) OVER (
					PARTITION BY counterpart_id
				) AS unread_count
			FROM scoped
		)
		SELECT
			u.id AS counterpart_id,
			u.username AS counterpart_username,
			u.full_name AS counterpart_full_name,
			u.role AS counterpart_role,
			m.id AS last_message_id,
			m.sender_id AS last_sender_id,
			m.content AS last_content,
			m.created_at AS last_created_at,
			m.is_read AS last_is_read,
			r.unread_count
		FROM ranked r
		JOIN messages m ON m.id = r.id
		JOIN users u ON u.id = r.counterpart_id
		WHERE r.rn = 1
		ORDER BY m.created_at DESC, m.id DESC
	`

	conversations := []model.Conversation{}
	if err := s.list(ctx, &conversations, query, userID, userID, userID, userID); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}
