package ports

import (
	"context"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
)

// LLMProvider is an external chat-completion provider.
type LLMProvider interface {
	Name() chat.Model
	// Configured reports whether credentials are present.
	Configured() bool
	GenerateChatResponse(ctx context.Context, message string) (string, error)
	GenerateCode(ctx context.Context, prompt string) (*chat.CodeResult, error)
}
