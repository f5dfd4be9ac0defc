package travelagent

import (
	"context"
	"net/http"

	"travelagent/tools"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
	Invoke(ctx context.Context, name string, input tools.RawInput) tools.Result
}

type Coordinator interface {
	Run(ctx context.Context, task string) (string, error)
}
