package chat

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyContent = errors.New("message content is required")
	ErrEmptyPrompt  = errors.New("code prompt is required")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Model selects the LLM provider that answers a message.
type Model string

const (
	ModelOpenAI    Model = "openai"
	ModelAnthropic Model = "anthropic"
)

// Normalize maps unknown or empty models to the OpenAI provider.
func (m Model) Normalize() Model {
	if m == ModelAnthropic {
		return ModelAnthropic
	}
	return ModelOpenAI
}

type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	Role      Role      `json:"role" db:"role"`
	Model     Model     `json:"model" db:"model"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SendMessageRequest is the body of POST /api/chat/message.
type SendMessageRequest struct {
	Content string `json:"content"`
	Model   Model  `json:"model"`
}

func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// GenerateCodeRequest is the body of POST /api/chat/generate-code.
type GenerateCodeRequest struct {
	Prompt string `json:"prompt"`
	Model  Model  `json:"model"`
}

func (r *GenerateCodeRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

type CodeResult struct {
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}

// Exchange pairs a stored user message with the assistant reply.
type Exchange struct {
	UserMessage      *ChatMessage `json:"userMessage"`
	AssistantMessage *ChatMessage `json:"assistantMessage"`
}

const (
	FallbackReply       = "I apologize, but I'm currently unable to process your request. Please check the API configuration."
	FallbackCode        = "// Code generation failed - please check API configuration"
	FallbackExplanation = "Unable to generate code due to API configuration issues."
)
