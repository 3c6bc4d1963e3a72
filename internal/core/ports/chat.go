package ports

import (
	"context"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
)

// ChatRepository stores the per-user conversation history.
type ChatRepository interface {
	Create(ctx context.Context, msg *chat.ChatMessage) error
	ListByUser(ctx context.Context, userID int64) ([]*chat.ChatMessage, error)
	ClearByUser(ctx context.Context, userID int64) error
}

type ChatService interface {
	ListMessages(ctx context.Context, userID int64) ([]*chat.ChatMessage, error)
	SendMessage(ctx context.Context, userID int64, req *chat.SendMessageRequest) (*chat.Exchange, error)
	GenerateCode(ctx context.Context, req *chat.GenerateCodeRequest) (*chat.CodeResult, error)
	ClearMessages(ctx context.Context, userID int64) error
}
