package repositories

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/db"
)

// ChatRepository stores chat history in Postgres.
type ChatRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewChatRepository(database *db.Database, logger *logrus.Logger) ports.ChatRepository {
	return &ChatRepository{db: database, logger: logger}
}

func (r *ChatRepository) Create(ctx context.Context, msg *chat.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (user_id, content, role, model)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if err := r.db.DB.QueryRowxContext(ctx, query, msg.UserID, msg.Content, msg.Role, msg.Model).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": msg.UserID, "role": msg.Role}).WithError(err).Error("db: failed to create chat message")
		}
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListByUser returns the conversation oldest first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID int64) ([]*chat.ChatMessage, error) {
	query := `
		SELECT id, user_id, content, role, model, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`

	msgs := []*chat.ChatMessage{}
	if err := r.db.DB.SelectContext(ctx, &msgs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return msgs, nil
}

func (r *ChatRepository) ClearByUser(ctx context.Context, userID int64) error {
	res, err := r.db.DB.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	if r.logger != nil {
		n, _ := res.RowsAffected()
		r.logger.WithFields(logrus.Fields{"user_id": userID, "deleted": n}).Info("db: chat history cleared")
	}
	return nil
}
