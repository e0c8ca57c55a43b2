package devbackend

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"

	"ConciergeChat/internal/session"
)

//go:embed replies.yaml
var defaultReplies []byte

// Responder produces the assistant reply to a conversation whose last entry is the guest message.
type Responder interface {
	Reply(ctx context.Context, history []session.Message) (string, error)
}

// Persona is the receptionist persona: the system prompt for model-backed replies
// and the keyword rules for canned ones.
type Persona struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
	Fallback string `yaml:"fallback"`
	Replies  []struct {
		Keywords []string `yaml:"keywords"`
		Reply    string   `yaml:"reply"`
	} `yaml:"replies"`
}

// LoadPersona reads a persona file; an empty path selects the built-in persona.
func LoadPersona(path string) (*Persona, error) {
	b := defaultReplies
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read persona: %w", err)
		}
	}
	var persona Persona
	if err := yaml.Unmarshal(b, &persona); err != nil {
		return nil, fmt.Errorf("failed to parse persona: %w", err)
	}
	if strings.TrimSpace(persona.Fallback) == "" {
		return nil, errors.New("persona has no fallback reply")
	}
	return &persona, nil
}

// CannedResponder answers from keyword rules, first match wins.
type CannedResponder struct {
	persona *Persona
}

// NewCannedResponder answers from the keyword rules of persona.
func NewCannedResponder(persona *Persona) *CannedResponder {
	return &CannedResponder{persona: persona}
}

// Reply matches the latest guest message against the rules, falling back to the persona fallback.
func (c *CannedResponder) Reply(ctx context.Context, history []session.Message) (string, error) {
	last, ok := session.LastUserMessage(history)
	if !ok {
		return strings.TrimSpace(c.persona.Fallback), nil
	}
	text := strings.ToLower(last.Content)
	for _, rule := range c.persona.Replies {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return strings.TrimSpace(rule.Reply), nil
			}
		}
	}
	return strings.TrimSpace(c.persona.Fallback), nil
}

// OpenAIResponder answers with a chat completion model.
type OpenAIResponder struct {
	client  *openai.Client
	model   string
	persona *Persona
}

// NewOpenAIResponder answers with model, primed with the persona system prompt.
func NewOpenAIResponder(client *openai.Client, model string, persona *Persona) *OpenAIResponder {
	return &OpenAIResponder{client: client, model: model, persona: persona}
}

func (o *OpenAIResponder) Reply(ctx context.Context, history []session.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: o.persona.System,
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleAssistant
		if msg.IsUser() {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.persona.Style.Temperature,
		MaxTokens:   o.persona.Style.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
