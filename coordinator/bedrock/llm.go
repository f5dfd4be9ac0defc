package bedrock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"travelagent/coordinator"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// A full itinerary in the final answer needs more room than a single step.
	defaultMaxTokens = 2048

	// Low temperature keeps the step format stable.
	defaultTemperature = 0.2

	defaultTopP = 0.9
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type LLMOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// LLMClient is a planner backed by the Bedrock Converse API.
type LLMClient struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
}

func NewLLMClient(brc bedrockRuntimeClient, opts LLMOptions) *LLMClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &LLMClient{
		brc:  brc,
		opts: opts,
	}
}

// Propose sends the system prompt and scratchpad as one user turn and returns
// the assistant text.
func (c *LLMClient) Propose(ctx context.Context, state coordinator.State) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.opts.ModelID, "iteration", state.Iteration, "steps", len(state.Steps))

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: coordinator.SystemPrompt(state.Tools)},
		},
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: coordinator.UserPrompt(state)}},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:     aws.Int32(c.opts.MaxTokens),
			Temperature:   aws.Float32(c.opts.Temperature),
			TopP:          aws.Float32(c.opts.TopP),
			StopSequences: []string{coordinator.StopSequence},
		},
	}
	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock Claude invoke failed", "error", err)
		return "", err
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	if out.Usage != nil {
		attrs = append(attrs, "input_tokens", aws.ToInt32(out.Usage.InputTokens), "output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	slog.Info("LLM_CLIENT: Bedrock Claude invoke succeeded", attrs...)

	switch out.StopReason {
	case types.StopReasonMaxTokens:
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit; consider increasing MaxTokens")
		return textFromOutput(out), fmt.Errorf("%w: stop reason %s", coordinator.ErrTruncated, out.StopReason)

	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		slog.Warn("LLM_CLIENT: Model response blocked by Bedrock safety filters")
		return "", fmt.Errorf("model response blocked by Bedrock safety filters")
	}

	return textFromOutput(out), nil
}

// textFromOutput joins the assistant text blocks with newlines.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	return strings.Join(texts, "\n")
}
