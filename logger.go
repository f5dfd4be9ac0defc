package travelagent

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// CoordinationLogger is the interface for coordinator logging.
type CoordinationLogger interface {
	LogIteration(iteration IterationLog) error
}

// NewCoordinationLogFilePath returns a per-run log path tagged with the planner
// backend and model so runs against different models are easy to tell apart.
func NewCoordinationLogFilePath(planner, model string) string {
	name := planner
	if model != "" {
		name += "." + model
	}
	name = strings.NewReplacer(":", "_", "/", "_").Replace(strings.ToLower(name))
	return fmt.Sprintf("./logs/%d.%s.json", time.Now().Unix(), name)
}

// IterationLog is one Thought/Action/Observation cycle of a planning session.
type IterationLog struct {
	SessionID  string        `json:"session_id"`
	Iteration  int           `json:"iteration"`
	Timestamp  time.Time     `json:"timestamp"`
	Phase      string        `json:"phase"`
	LLMInput   string        `json:"llm_input,omitempty"`
	LLMOutput  string        `json:"llm_output"`
	Thought    string        `json:"thought,omitempty"`
	ToolCalls  []ToolCallLog `json:"tool_calls,omitempty"`
	Correction string        `json:"correction,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// ToolCallLog represents a tool execution within a step
type ToolCallLog struct {
	Name     string        `json:"name"`
	Input    any           `json:"input"`
	Output   any           `json:"output"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// FileCoordinationLogger buffers iterations and writes them all on Flush.
type FileCoordinationLogger struct {
	iterations []IterationLog
	writer     io.Writer
}

func NewFileCoordinationLogger(writer io.Writer) *FileCoordinationLogger {
	return &FileCoordinationLogger{
		iterations: make([]IterationLog, 0),
		writer:     writer,
	}
}

func (fcl *FileCoordinationLogger) LogIteration(iteration IterationLog) error {
	fcl.iterations = append(fcl.iterations, iteration)
	return nil
}

// Flush writes the buffered iterations as one JSON document and clears the
// buffer.
func (fcl *FileCoordinationLogger) Flush() error {
	if fcl.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"planning_session": map[string]any{
			"timestamp":  time.Now(),
			"iterations": fcl.iterations,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal coordination log: %w", err)
	}

	if _, err := fcl.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write coordination log: %w", err)
	}

	fcl.iterations = fcl.iterations[:0]
	return nil
}

type NoOpCoordinationLogger struct{}

func NewNoOpCoordinationLogger() *NoOpCoordinationLogger {
	return &NoOpCoordinationLogger{}
}

func (nop *NoOpCoordinationLogger) LogIteration(iteration IterationLog) error {
	return nil
}

// StdoutCoordinationLogger logs each iteration as a JSON line to stdout (for Lambda/CloudWatch)
type StdoutCoordinationLogger struct {
	out io.Writer
}

func NewStdoutCoordinationLogger() *StdoutCoordinationLogger {
	return &StdoutCoordinationLogger{out: os.Stdout}
}

func (l *StdoutCoordinationLogger) LogIteration(iteration IterationLog) error {
	data, err := json.Marshal(iteration)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
