package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/coordinator"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	response *bedrockruntime.ConverseOutput
	err      error
	input    *bedrockruntime.ConverseInput
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = input
	return m.response, m.err
}

func textOutput(reason types.StopReason, texts ...string) *bedrockruntime.ConverseOutput {
	var blocks []types.ContentBlock
	for _, t := range texts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: t})
	}
	return &bedrockruntime.ConverseOutput{
		StopReason: reason,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks},
		},
		Usage:   &types.TokenUsage{InputTokens: aws.Int32(100), OutputTokens: aws.Int32(20)},
		Metrics: &types.ConverseMetrics{LatencyMs: aws.Int64(250)},
	}
}

func TestNewLLMClient(t *testing.T) {
	tests := []struct {
		name     string
		input    LLMOptions
		expected LLMOptions
	}{
		{
			name:  "empty options uses defaults",
			input: LLMOptions{},
			expected: LLMOptions{
				ModelID:     defaultModelID,
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
				TopP:        defaultTopP,
			},
		},
		{
			name:     "custom options preserved",
			input:    LLMOptions{ModelID: "custom-model", MaxTokens: 4096, Temperature: 0.5, TopP: 0.8},
			expected: LLMOptions{ModelID: "custom-model", MaxTokens: 4096, Temperature: 0.5, TopP: 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewLLMClient(&mockBedrockClient{}, tt.input)
			assert.Equal(t, tt.expected, client.opts)
		})
	}
}

func TestLLMClientPropose(t *testing.T) {
	state := coordinator.State{
		Task:  "Trip from Delhi to Goa",
		Tools: []coordinator.ToolSpec{{Name: "hotel_recommendation", Description: "Hotels"}},
	}

	tests := []struct {
		name    string
		output  *bedrockruntime.ConverseOutput
		err     error
		want    string
		wantErr string
	}{
		{
			name:   "stop sequence returns text",
			output: textOutput(types.StopReasonStopSequence, "Thought: hotels\nAction: hotel_recommendation\nAction Input: {\"city\": \"Goa\"}"),
			want:   "Thought: hotels\nAction: hotel_recommendation\nAction Input: {\"city\": \"Goa\"}",
		},
		{
			name:   "multiple text blocks are joined",
			output: textOutput(types.StopReasonEndTurn, "Thought: done", "Final Answer: enjoy Goa"),
			want:   "Thought: done\nFinal Answer: enjoy Goa",
		},
		{
			name:    "content filtered",
			output:  textOutput(types.StopReasonContentFiltered),
			wantErr: "safety filters",
		},
		{
			name:    "api error",
			err:     errors.New("throttled"),
			wantErr: "throttled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brc := &mockBedrockClient{response: tt.output, err: tt.err}
			got, err := NewLLMClient(brc, LLMOptions{}).Propose(context.Background(), state)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.NotNil(t, brc.input)
			assert.Equal(t, defaultModelID, aws.ToString(brc.input.ModelId))
			assert.Equal(t, []string{coordinator.StopSequence}, brc.input.InferenceConfig.StopSequences)
			require.Len(t, brc.input.System, 1)
			sys := brc.input.System[0].(*types.SystemContentBlockMemberText)
			assert.Contains(t, sys.Value, "hotel_recommendation")
			require.Len(t, brc.input.Messages, 1)
			user := brc.input.Messages[0].Content[0].(*types.ContentBlockMemberText)
			assert.Contains(t, user.Value, "Question: Trip from Delhi to Goa")
		})
	}
}

func TestLLMClientProposeTruncated(t *testing.T) {
	brc := &mockBedrockClient{response: textOutput(types.StopReasonMaxTokens, "Thought: done\nFinal Answer: ## Trip to")}
	got, err := NewLLMClient(brc, LLMOptions{}).Propose(context.Background(), coordinator.State{Task: "Goa"})

	require.Error(t, err)
	assert.ErrorIs(t, err, coordinator.ErrTruncated)
	assert.Equal(t, "Thought: done\nFinal Answer: ## Trip to", got)
}
