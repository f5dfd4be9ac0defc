package coordinator

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"travelagent"
	"travelagent/tools"
)

type Phase string

const (
	PhaseThinking   Phase = "thinking"
	PhaseActing     Phase = "acting"
	PhaseObserving  Phase = "observing"
	PhaseTerminated Phase = "terminated"
)

type StopReason string

const (
	StopFinalAnswer   StopReason = "final_answer"
	StopMaxIterations StopReason = "max_iterations"
	StopTimeout       StopReason = "timeout"
	StopPlannerError  StopReason = "planner_error"
)

type StepKind string

const (
	// StepTool is a tool call that was executed.
	StepTool StepKind = "tool"
	// StepMalformed is model output that did not follow the step grammar.
	StepMalformed StepKind = "malformed"
	// StepRejected is a tool call the repeat guard refused to execute.
	StepRejected StepKind = "rejected"
)

// Step is one Thought/Action/Observation cycle.
type Step struct {
	Iteration   int            `json:"iteration"`
	Kind        StepKind       `json:"kind"`
	Thought     string         `json:"thought,omitempty"`
	Action      string         `json:"action,omitempty"`
	Input       tools.RawInput `json:"action_input"`
	Observation tools.Result   `json:"observation"`
	RawOutput   string         `json:"raw_output,omitempty"`
}

// ToolSpec describes a tool to the planner.
type ToolSpec struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// State is what a planner sees when proposing the next step.
type State struct {
	SessionID string
	Task      string
	Tools     []ToolSpec
	Steps     []Step
	Iteration int
}

// Observations returns the executed tool calls in order.
func (s State) Observations() []travelagent.Observation {
	return observations(s.Steps)
}

// Session is the record of one planning run.
type Session struct {
	ID          string        `json:"id"`
	Task        string        `json:"task"`
	Steps       []Step        `json:"steps"`
	FinalAnswer string        `json:"final_answer"`
	Reason      StopReason    `json:"reason"`
	Iterations  int           `json:"iterations"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// Itinerary assembles the structured trip data gathered during the session.
func (s *Session) Itinerary() *travelagent.Itinerary {
	return travelagent.BuildItinerary(s.Task, observations(s.Steps))
}

func observations(steps []Step) []travelagent.Observation {
	var out []travelagent.Observation
	for _, st := range steps {
		if st.Kind != StepTool {
			continue
		}
		out = append(out, travelagent.Observation{Tool: st.Action, Input: st.Input, Result: st.Observation})
	}
	return out
}

// SpecsFrom lists the provider's tools for a planner prompt.
func SpecsFrom(tp travelagent.ToolProvider) []ToolSpec {
	list := tp.GetTools()
	specs := make([]ToolSpec, 0, len(list))
	for _, t := range list {
		specs = append(specs, ToolSpec{Name: t.Name(), Description: t.Description(), InputSchema: t.InputSchema()})
	}
	return specs
}
