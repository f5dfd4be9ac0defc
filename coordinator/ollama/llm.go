package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"travelagent"
	"travelagent/coordinator"
)

type options struct {
	Temperature   float64  `json:"temperature,omitempty"`
	TopP          float64  `json:"top_p,omitempty"`
	RepeatPenalty float64  `json:"repeat_penalty,omitempty"`
	NumCtx        int      `json:"num_ctx,omitempty"`
	NumPredict    int      `json:"num_predict,omitempty"`
	Stop          []string `json:"stop,omitempty"`
}

// Client is a planner backed by a local Ollama server's chat endpoint.
type Client struct {
	endpoint   string
	model      string
	httpClient travelagent.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	Temperature  float64
	MaxTokens    int
	HTTPClient   travelagent.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.ModelID) == "" {
		return nil, fmt.Errorf("model id is required")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("http client is required")
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			Temperature:   opts.Temperature,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        16384, // room for the tool schemas plus a full scratchpad
			NumPredict:    opts.MaxTokens,
			Stop:          []string{coordinator.StopSequence},
		},
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireResponse struct {
	Message    wireMessage `json:"message"`
	DoneReason string      `json:"done_reason,omitempty"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

// Propose sends the system prompt and the scratchpad to Ollama and returns
// the model's text verbatim. Parsing is left to the coordinator.
func (c *Client) Propose(ctx context.Context, state coordinator.State) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.model, "iteration", state.Iteration, "steps", len(state.Steps))

	reqBody := wireRequest{
		Model: c.model,
		Messages: []wireMessage{
			{Role: "system", Content: coordinator.SystemPrompt(state.Tools)},
			{Role: "user", Content: coordinator.UserPrompt(state)},
		},
		Stream:  false,
		Options: c.options,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	slog.Info("LLM_CLIENT: Response received", "done_reason", wr.DoneReason, "content_length", len(wr.Message.Content))
	if wr.DoneReason == "length" {
		return wr.Message.Content, fmt.Errorf("%w: done reason length", coordinator.ErrTruncated)
	}
	return wr.Message.Content, nil
}
