package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	config "github.com/avatarctic/quantum-studio/configs"
	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// AnthropicProvider calls the Messages API through the official SDK.
type AnthropicProvider struct {
	client    anthropic.Client
	apiKey    string
	model     string
	maxTokens int
}

func NewAnthropicProvider(cfg *config.LLMConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.AnthropicBaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.AnthropicBaseURL, "/")+"/"))
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		apiKey:    cfg.AnthropicAPIKey,
		model:     cfg.AnthropicModel,
		maxTokens: cfg.MaxTokens,
	}
}

func (p *AnthropicProvider) Name() chat.Model { return chat.ModelAnthropic }

func (p *AnthropicProvider) Configured() bool { return p.apiKey != "" }

// messages sends one user turn and returns the first content block if it is text.
func (p *AnthropicProvider) messages(ctx context.Context, system, content string) (string, bool, error) {
	if !p.Configured() {
		return "", false, ErrNotConfigured
	}
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("anthropic: %w", err)
	}
	if len(msg.Content) == 0 || msg.Content[0].Type != "text" {
		return "", false, nil
	}
	return msg.Content[0].Text, true, nil
}

func (p *AnthropicProvider) GenerateChatResponse(ctx context.Context, message string) (string, error) {
	text, ok, err := p.messages(ctx, assistantPrompt, message)
	if err != nil {
		return "", err
	}
	if !ok {
		return emptyReply, nil
	}
	return text, nil
}

func (p *AnthropicProvider) GenerateCode(ctx context.Context, prompt string) (*chat.CodeResult, error) {
	text, _, err := p.messages(ctx, codePrompt, prompt)
	if err != nil {
		return nil, err
	}
	return parseCodeResult(text)
}

var _ ports.LLMProvider = (*AnthropicProvider)(nil)
