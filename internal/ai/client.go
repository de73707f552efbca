package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/trainflow/strategy-engine/internal/config"
	"github.com/trainflow/strategy-engine/internal/logger"
)

// FailureCategory classifies completion and persistence failures for user
// display.
type FailureCategory string

const (
	FailureAuth         FailureCategory = "authentication"
	FailureRateLimit    FailureCategory = "rate-limit"
	FailureConnectivity FailureCategory = "connectivity"
)

// Categorize maps an API error onto one of the displayed failure categories.
func Categorize(err error) FailureCategory {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return FailureAuth
		case 429:
			return FailureRateLimit
		}
	}
	return FailureConnectivity
}

// Client talks to the OpenRouter chat completion endpoint.
type Client struct {
	client *openai.Client
	cfg    *config.Config
	logger *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	ocfg := openai.DefaultConfig(cfg.OpenRouter.APIKey)
	ocfg.BaseURL = cfg.OpenRouter.BaseURL

	return &Client{
		client: openai.NewClientWithConfig(ocfg),
		cfg:    cfg,
		logger: log,
	}
}

// Generate sends the user's prompt plus a truncated history window and
// returns the raw completion string. The fixed system message is always
// first; only the most recent HistoryWindow non-system turns are forwarded,
// to bound latency. image, when non-empty, is attached to the user turn as
// an image URL part (data URLs included).
func (c *Client) Generate(ctx context.Context, prompt string, history []Message, image string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CompletionTimeout())
	defer cancel()

	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, m := range truncateHistory(history, c.cfg.OpenRouter.HistoryWindow) {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	switch {
	case prompt != "" && image != "":
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: image}},
			},
		})
	case prompt != "":
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
	}

	c.logger.Info("sending completion request", "model", c.cfg.OpenRouter.Model, "messages", len(msgs))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.OpenRouter.Model,
		Messages:    msgs,
		Temperature: c.cfg.OpenRouter.Temperature,
		MaxTokens:   c.cfg.OpenRouter.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion API call (%s): %w", Categorize(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	c.logger.Info("received completion", "length", len(raw))
	c.logger.Debug("raw completion", "content", raw)
	return raw, nil
}

// GenerateName issues the narrowly-scoped naming request. Only the first 20
// lines of code are forwarded.
func (c *Client) GenerateName(ctx context.Context, userPrompt, aiSummary, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CompletionTimeout())
	defer cancel()

	head := code
	if lines := strings.Split(code, "\n"); len(lines) > 20 {
		head = strings.Join(lines[:20], "\n")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.OpenRouter.NamingModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: namingSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"User Prompt:\n%s\n\nAI Summary:\n%s\n\nGenerated Code (first 20 lines):\n%s\n\nName:",
				userPrompt, aiSummary, head)},
		},
		Temperature: 0.7,
		MaxTokens:   50,
	})
	if err != nil {
		return "", fmt.Errorf("naming API call (%s): %w", Categorize(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("naming returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Chat answers a general advice message without the generation contract.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CompletionTimeout())
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.OpenRouter.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("chat API call (%s): %w", Categorize(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func truncateHistory(history []Message, window int) []Message {
	filtered := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Role == openai.ChatMessageRoleSystem {
			continue
		}
		filtered = append(filtered, m)
	}
	if len(filtered) > window {
		filtered = filtered[len(filtered)-window:]
	}
	return filtered
}
