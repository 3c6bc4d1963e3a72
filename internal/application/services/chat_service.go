package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

type ChatService struct {
	repo      ports.ChatRepository
	providers map[chat.Model]ports.LLMProvider
	logger    *logrus.Logger
}

func NewChatService(repo ports.ChatRepository, providers []ports.LLMProvider, logger *logrus.Logger) ports.ChatService {
	byModel := make(map[chat.Model]ports.LLMProvider, len(providers))
	for _, p := range providers {
		byModel[p.Name()] = p
	}
	return &ChatService{repo: repo, providers: byModel, logger: logger}
}

func (s *ChatService) provider(m chat.Model) (ports.LLMProvider, error) {
	p, ok := s.providers[m]
	if !ok {
		return nil, fmt.Errorf("no provider registered for model %q", m)
	}
	return p, nil
}

func (s *ChatService) ListMessages(ctx context.Context, userID int64) ([]*chat.ChatMessage, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SendMessage stores the user turn, asks the selected provider and stores its reply.
// A provider failure is answered with a fixed apology instead of an error.
func (s *ChatService) SendMessage(ctx context.Context, userID int64, req *chat.SendMessageRequest) (*chat.Exchange, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	model := req.Model.Normalize()

	userMsg := &chat.ChatMessage{UserID: userID, Content: req.Content, Role: chat.RoleUser, Model: model}
	if err := s.repo.Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	reply, err := s.ask(ctx, model, req.Content)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": userID, "model": model}).WithError(err).Error("llm: chat response failed")
		}
		reply = chat.FallbackReply
	}

	assistantMsg := &chat.ChatMessage{UserID: userID, Content: reply, Role: chat.RoleAssistant, Model: model}
	if err := s.repo.Create(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}
	return &chat.Exchange{UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}

func (s *ChatService) ask(ctx context.Context, model chat.Model, content string) (string, error) {
	p, err := s.provider(model)
	if err != nil {
		return "", err
	}
	return p.GenerateChatResponse(ctx, content)
}

func (s *ChatService) GenerateCode(ctx context.Context, req *chat.GenerateCodeRequest) (*chat.CodeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	model := req.Model.Normalize()
	p, err := s.provider(model)
	var res *chat.CodeResult
	if err == nil {
		res, err = p.GenerateCode(ctx, req.Prompt)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("model", model).WithError(err).Error("llm: code generation failed")
		}
		return &chat.CodeResult{Code: chat.FallbackCode, Explanation: chat.FallbackExplanation}, nil
	}
	return res, nil
}

func (s *ChatService) ClearMessages(ctx context.Context, userID int64) error {
	if err := s.repo.ClearByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	return nil
}
