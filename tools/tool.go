package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	Run(ctx context.Context, input RawInput) (output map[string]any, err error)
}

// Result is the observation produced by one tool invocation. Exactly one of
// Data and Error is set.
type Result struct {
	Data  map[string]any
	Error string
}

func Success(data map[string]any) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{Data: data}
}

func Failure(msg string) Result {
	if msg == "" {
		msg = "unknown error"
	}
	return Result{Error: msg}
}

func (r Result) Failed() bool { return r.Error != "" }

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	return json.Marshal(r.Data)
}

// String renders the result the way the driving model sees it.
func (r Result) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"error":"unrenderable tool result"}`
	}
	return string(b)
}

// Invoke runs a tool and converts every failure into an error Result, so no
// error crosses the tool boundary.
func Invoke(ctx context.Context, t Tool, input RawInput) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("TOOL: Recovered from panic", "tool", t.Name(), "panic", r)
			res = Failure(fmt.Sprintf("Tool %s failed unexpectedly: %v", t.Name(), r))
		}
	}()

	out, err := t.Run(ctx, input)
	if err != nil {
		slog.Info("TOOL: Returning error observation", "tool", t.Name(), "error", err)
		return Failure(err.Error())
	}
	return Success(out)
}

// toMap keeps tool outputs uniform: typed responses are flattened to the
// same map shape the driving model receives.
func toMap(v any) map[string]any {
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}
