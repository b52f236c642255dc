// Package llm wires the optional IntentAtlas LLM capability: a thin
// OpenAI chat-completion client plus a Redis-backed rate limiter,
// both reached only when the engine is given an API key. Nothing in
// the genome engine requires an LLM — a nil or disabled Client leaves
// IntentAtlas on its lexical-pattern path.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI chat-completion call behind the narrow
// Summarize contract subsystems.LLMClient expects.
type Client struct {
	openaiClient *openai.Client
	limiter      *RateLimiter
	model        string
	logger       *slog.Logger
	enabled      bool
}

// NewClient builds a Client for apiKey. limiter may be nil to disable
// proactive throttling. An empty apiKey returns a disabled client
// whose Summarize always errors, so callers can construct it
// unconditionally and let subsystems.Capabilities.LLM stay nil instead.
func NewClient(apiKey, model string, limiter *RateLimiter) *Client {
	logger := slog.Default().With("component", "llm")
	if model == "" {
		model = openai.GPT4oMini
	}
	if apiKey == "" {
		logger.Info("no LLM API key configured, IntentAtlas descriptions stay lexical-only")
		return &Client{logger: logger, enabled: false}
	}
	return &Client{
		openaiClient: openai.NewClient(apiKey),
		limiter:      limiter,
		model:        model,
		logger:       logger,
		enabled:      true,
	}
}

// IsEnabled reports whether an API key was configured.
func (c *Client) IsEnabled() bool { return c.enabled }

// Summarize sends prompt as a user message with no system prompt and
// returns the model's reply. It implements subsystems.LLMClient.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("llm client not configured (no API key)")
	}
	if c.limiter != nil {
		if err := c.limiter.CheckAndIncrementWithRetry(ctx, estimateTokens(prompt)); err != nil {
			return "", fmt.Errorf("llm rate limit: %w", err)
		}
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.0,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := resp.Choices[0].Message.Content
	c.logger.Debug("llm summarize", "prompt_length", len(prompt), "tokens_used", resp.Usage.TotalTokens)
	return text, nil
}

// estimateTokens approximates token count as one token per four
// characters, adequate for proactive (not billing-accurate) throttling.
func estimateTokens(s string) int64 {
	return int64(len(s)/4 + 1)
}
