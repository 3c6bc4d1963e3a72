// Package llm adapts hosted chat-completion APIs to ports.LLMProvider.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
)

// ErrNotConfigured is returned when a provider has no API key.
var ErrNotConfigured = errors.New("llm provider is not configured")

const (
	assistantPrompt = "You are AI Assistant Pro, a sophisticated AI helper with expertise in code generation, analysis, and secure computing. Always provide detailed, secure, and production-ready solutions."
	codePrompt      = "You are a code generation expert. Generate secure, production-ready code with detailed explanations. Always include security considerations and best practices. Respond in JSON format with 'code' and 'explanation' fields."

	emptyReply         = "I apologize, but I couldn't generate a response."
	missingCode        = "// Code generation failed"
	missingExplanation = "No explanation available"
)

// parseCodeResult decodes the {code, explanation} object a provider returns,
// tolerating a surrounding markdown fence.
func parseCodeResult(text string) (*chat.CodeResult, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	if text == "" {
		text = "{}"
	}
	var raw struct {
		Code        string `json:"code"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode code result: %w", err)
	}
	res := &chat.CodeResult{Code: raw.Code, Explanation: raw.Explanation}
	if res.Code == "" {
		res.Code = missingCode
	}
	if res.Explanation == "" {
		res.Explanation = missingExplanation
	}
	return res, nil
}
