package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	config "github.com/avatarctic/quantum-studio/configs"
	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// OpenAIProvider talks to the chat completions API.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	apiKey    string
}

// NewOpenAIProvider builds a provider; baseURL overrides the API endpoint when non-empty.
func NewOpenAIProvider(cfg *config.LLMConfig, baseURL string) *OpenAIProvider {
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if baseURL != "" {
		oc.BaseURL = baseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(oc),
		model:     cfg.OpenAIModel,
		maxTokens: cfg.MaxTokens,
		apiKey:    cfg.OpenAIAPIKey,
	}
}

func (p *OpenAIProvider) Name() chat.Model { return chat.ModelOpenAI }

func (p *OpenAIProvider) Configured() bool { return p.apiKey != "" }

func (p *OpenAIProvider) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if !p.Configured() {
		return "", ErrNotConfigured
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) GenerateChatResponse(ctx context.Context, message string) (string, error) {
	text, err := p.complete(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return emptyReply, nil
	}
	return text, nil
}

func (p *OpenAIProvider) GenerateCode(ctx context.Context, prompt string) (*chat.CodeResult, error) {
	text, err := p.complete(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: codePrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, err
	}
	return parseCodeResult(text)
}

var _ ports.LLMProvider = (*OpenAIProvider)(nil)
