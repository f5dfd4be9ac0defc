package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxTextLen keeps a message under Slack's limit for the text field.
const maxTextLen = 39000

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts to a Slack incoming webhook.
type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostPlan shares a finished trip plan. The answer's markdown is converted to
// Slack mrkdwn.
func (c *Client) PostPlan(ctx context.Context, channel, task, answer string) error {
	return c.PostMessage(ctx, channel, FormatPlan(task, answer))
}

// FormatPlan renders a trip plan as a Slack message.
func FormatPlan(task, answer string) string {
	text := fmt.Sprintf(":airplane: *Trip plan* for _%s_\n\n%s", strings.TrimSpace(task), toMrkdwn(answer))
	if len(text) > maxTextLen {
		cut := maxTextLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "\n…(truncated)"
	}
	return text
}

func toMrkdwn(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "**", "*")
}
