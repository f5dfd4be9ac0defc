package claude

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/coordinator"
)

type fakeMessages struct {
	resp   *anthropic.Message
	err    error
	params anthropic.MessageNewParams
}

func (f *fakeMessages) New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.params = body
	return f.resp, f.err
}

func message(stop anthropic.StopReason, texts ...string) *anthropic.Message {
	m := &anthropic.Message{StopReason: stop}
	for _, t := range texts {
		m.Content = append(m.Content, anthropic.ContentBlockUnion{Type: "text", Text: t})
	}
	return m
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(&fakeMessages{}, Options{})
	assert.Equal(t, Options{Model: defaultModel, MaxTokens: defaultMaxTokens, Temperature: defaultTemperature}, c.opts)
}

func TestClientPropose(t *testing.T) {
	state := coordinator.State{
		Task:  "Weekend in Jaipur",
		Tools: []coordinator.ToolSpec{{Name: "places_discovery", Description: "Attractions"}},
	}

	tests := []struct {
		name    string
		resp    *anthropic.Message
		err     error
		want    string
		wantErr string
	}{
		{
			name: "text blocks",
			resp: message("stop_sequence", "Thought: sights\nAction: places_discovery\nAction Input: {\"city\": \"Jaipur\"}"),
			want: "Thought: sights\nAction: places_discovery\nAction Input: {\"city\": \"Jaipur\"}",
		},
		{
			name: "joined final answer",
			resp: message("end_turn", "Thought: done", "Final Answer: Visit Amber Fort"),
			want: "Thought: done\nFinal Answer: Visit Amber Fort",
		},
		{name: "api error", err: errors.New("overloaded"), wantErr: "overloaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := &fakeMessages{resp: tt.resp, err: tt.err}
			got, err := NewClient(fm, Options{Model: "claude-test"}).Propose(context.Background(), state)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.Equal(t, anthropic.Model("claude-test"), fm.params.Model)
			assert.Equal(t, []string{coordinator.StopSequence}, fm.params.StopSequences)
			require.Len(t, fm.params.System, 1)
			assert.Contains(t, fm.params.System[0].Text, "places_discovery")
			assert.Len(t, fm.params.Messages, 1)
		})
	}
}

func TestClientProposeTruncated(t *testing.T) {
	fm := &fakeMessages{resp: message("max_tokens", "Thought: done", "Final Answer: ## Trip to Goa\n### Flight")}
	got, err := NewClient(fm, Options{}).Propose(context.Background(), coordinator.State{Task: "Goa"})

	require.Error(t, err)
	assert.ErrorIs(t, err, coordinator.ErrTruncated)
	assert.Equal(t, "Thought: done\nFinal Answer: ## Trip to Goa\n### Flight", got)
}
