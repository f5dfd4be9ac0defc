package mock

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"travelagent/coordinator"
)

// ScriptedPlanner replays fixed model outputs in order. Once the script runs
// out it keeps returning the last output, which is how a stuck model behaves.
type ScriptedPlanner struct {
	mu      sync.Mutex
	outputs []string
	calls   int
}

func NewScriptedPlanner(outputs ...string) *ScriptedPlanner {
	return &ScriptedPlanner{outputs: outputs}
}

func (s *ScriptedPlanner) Propose(ctx context.Context, state coordinator.State) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.outputs) == 0 {
		return "", errors.New("scripted planner has no outputs")
	}
	i := min(s.calls, len(s.outputs)-1)
	s.calls++
	slog.Info("LLM_CLIENT: Scripted output", "call", s.calls, "iteration", state.Iteration)
	return s.outputs[i], nil
}

// Calls reports how many times Propose has been called.
func (s *ScriptedPlanner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
