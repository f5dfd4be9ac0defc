// Package claude is a planner backed by the Anthropic Messages API.
package claude

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"travelagent/coordinator"
)

const (
	defaultModel       = "claude-sonnet-4-5"
	defaultMaxTokens   = 2048
	defaultTemperature = 0.2
)

type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

type Client struct {
	messages messagesAPI
	opts     Options
}

// NewClient wraps the Messages service of an Anthropic client, for example
// &anthropic.NewClient(option.WithAPIKey(key)).Messages.
func NewClient(messages messagesAPI, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	return &Client{messages: messages, opts: opts}
}

func (c *Client) Propose(ctx context.Context, state coordinator.State) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.opts.Model, "iteration", state.Iteration, "steps", len(state.Steps))

	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: c.opts.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: coordinator.SystemPrompt(state.Tools)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(coordinator.UserPrompt(state))),
		},
		StopSequences: []string{coordinator.StopSequence},
		Temperature:   anthropic.Float(c.opts.Temperature),
	})
	if err != nil {
		slog.Error("LLM_CLIENT: Anthropic invoke failed", "error", err)
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	slog.Info("LLM_CLIENT: Anthropic invoke succeeded",
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	if resp.StopReason == "refusal" {
		return "", fmt.Errorf("model refused to respond")
	}

	var texts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	text := strings.Join(texts, "\n")
	if resp.StopReason == "max_tokens" {
		slog.Warn("LLM_CLIENT: Model hit max_tokens limit; consider increasing MaxTokens", "max_tokens", c.opts.MaxTokens)
		return text, fmt.Errorf("%w: stop reason max_tokens", coordinator.ErrTruncated)
	}
	return text, nil
}
