// Package llm wraps the Groq chat-completion API behind the narrow interface
// the classification pipeline needs. Groq speaks the OpenAI wire protocol, so
// the client is go-openai pointed at the Groq base URL.
package llm

import (
	"context"
	"errors"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/support-copilot/ticket-api/internal/classifier"
	"github.com/support-copilot/ticket-api/internal/config"
)

// ErrNotConfigured is returned when no provider API key is set. The pipeline
// treats it like any other model failure and falls back.
var ErrNotConfigured = errors.New("llm: api key not configured")

// Client is a process-wide, lazily constructed Groq client. Construction is
// guarded by sync.Once so concurrent first calls share one underlying client;
// the client itself is safe for concurrent use.
type Client struct {
	cfg config.GroqConfig

	once   sync.Once
	client *openai.Client
}

// NewClient prepares a client without touching the network. The underlying
// transport is built on first use so the service can boot without a key.
func NewClient(cfg config.GroqConfig) *Client {
	return &Client{cfg: cfg}
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Ready reports whether the client can attempt a completion.
func (c *Client) Ready() bool {
	return c.cfg.APIKey != ""
}

// Classify sends the prompt pair and returns the raw completion text.
// Temperature zero keeps classification deterministic. The call is bounded by
// the configured timeout so a hung provider still reaches the fallback path.
func (c *Client) Classify(ctx context.Context, prompt classifier.Prompt) (string, error) {
	if !c.Ready() {
		return "", ErrNotConfigured
	}

	c.once.Do(func() {
		apiCfg := openai.DefaultConfig(c.cfg.APIKey)
		apiCfg.BaseURL = c.cfg.BaseURL
		c.client = openai.NewClientWithConfig(apiCfg)
	})

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: 0,
		MaxTokens:   500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
