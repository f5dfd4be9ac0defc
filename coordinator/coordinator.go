package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"travelagent"
	"travelagent/tools"
)

const (
	DefaultMaxIterations = 7
	DefaultMaxDuration   = 60 * time.Second
)

// Planner produces the driving model's raw text for the next step.
type Planner interface {
	Propose(ctx context.Context, state State) (string, error)
}

// Coordinator runs the Thought/Action/Observation loop between a planner and
// the tools.
type Coordinator struct {
	planner       Planner
	toolProvider  travelagent.ToolProvider
	maxIterations int
	maxDuration   time.Duration
	repeatGuard   bool
	logger        travelagent.CoordinationLogger
	tracer        trace.Tracer
	now           func() time.Time
	metrics       metrics
}

type Option func(*Coordinator)

func WithMaxIterations(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

func WithMaxDuration(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.maxDuration = d
		}
	}
}

// WithRepeatGuard toggles refusing a tool call identical to the immediately
// preceding failed one.
func WithRepeatGuard(on bool) Option {
	return func(c *Coordinator) { c.repeatGuard = on }
}

func WithLogger(l travelagent.CoordinationLogger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = t }
}

func WithMeter(m metric.Meter) Option {
	return func(c *Coordinator) { c.metrics = newMetrics(m) }
}

// WithClock replaces time.Now for the wall-clock budget.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator initializes a new coordinator.
func NewCoordinator(planner Planner, tp travelagent.ToolProvider, opts ...Option) *Coordinator {
	c := &Coordinator{
		planner:       planner,
		toolProvider:  tp,
		maxIterations: DefaultMaxIterations,
		maxDuration:   DefaultMaxDuration,
		repeatGuard:   true,
		logger:        travelagent.NewNoOpCoordinationLogger(),
		tracer:        tracenoop.NewTracerProvider().Tracer("coordinator"),
		now:           time.Now,
		metrics:       newMetrics(metricnoop.NewMeterProvider().Meter("coordinator")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the coordination process for a given task and returns the
// final answer.
func (c *Coordinator) Run(ctx context.Context, task string) (string, error) {
	session, err := c.Plan(ctx, task)
	if err != nil {
		return "", err
	}
	return session.FinalAnswer, nil
}

// Plan runs one planning session. The loop ends on a Final Answer, the
// iteration cap or the time cap; the caps produce a best-effort answer built
// from the observations gathered so far. Only a planner failure is returned
// as an error, together with the partial session.
func (c *Coordinator) Plan(ctx context.Context, task string) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		Task:      task,
		StartedAt: c.now(),
	}
	deadline := session.StartedAt.Add(c.maxDuration)

	ctx, span := c.tracer.Start(ctx, "Coordinator.Plan", trace.WithAttributes(
		attribute.String("session.id", session.ID),
		attribute.Int("max_iterations", c.maxIterations),
	))
	defer span.End()

	c.metrics.runs.Add(ctx, 1)
	slog.Info("COORDINATOR: Starting run", "session_id", session.ID, "task", task)

	specs := SpecsFrom(c.toolProvider)
	defer func() { session.Duration = c.now().Sub(session.StartedAt) }()

	for iter := 1; iter <= c.maxIterations; iter++ {
		if !c.now().Before(deadline) {
			c.forceStop(ctx, session, StopTimeout)
			return session, nil
		}

		session.Iterations = iter
		c.metrics.iterations.Add(ctx, 1)
		iterCtx, iterSpan := c.tracer.Start(ctx, "Coordinator.Iteration", trace.WithAttributes(attribute.Int("iteration", iter)))

		state := State{SessionID: session.ID, Task: task, Tools: specs, Steps: session.Steps, Iteration: iter}
		iterLog := travelagent.IterationLog{
			SessionID: session.ID,
			Iteration: iter,
			Timestamp: c.now(),
			Phase:     string(PhaseThinking),
			LLMInput:  UserPrompt(state),
		}

		output, err := c.propose(iterCtx, state, deadline)
		truncated := errors.Is(err, ErrTruncated)
		if truncated {
			err = nil
		}
		if err != nil {
			iterLog.Error = err.Error()
			c.logIteration(iterLog)
			iterSpan.RecordError(err)
			iterSpan.End()

			// Running out of time while the model is thinking is the time cap,
			// not a planner failure.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				c.forceStop(ctx, session, StopTimeout)
				return session, nil
			}
			session.Reason = StopPlannerError
			c.metrics.runsFailed.Add(ctx, 1)
			span.SetStatus(codes.Error, "planner failed")
			span.RecordError(err)
			slog.Error("COORDINATOR: Planner failed", "session_id", session.ID, "iteration", iter, "error", err)
			return session, fmt.Errorf("planner failed: %w", err)
		}
		iterLog.LLMOutput = output

		proposal, perr := ParseStep(output)
		if truncated {
			perr = ErrTruncated
		}
		iterLog.Thought = proposal.Thought

		switch {
		case perr != nil:
			c.metrics.malformed.Add(iterCtx, 1)
			correction := fmt.Sprintf("Invalid format (%s). Do not call any more tools; reply now with \"Final Answer:\" followed by the best plan you can give from the observations so far.", perr)
			session.Steps = append(session.Steps, Step{
				Iteration:   iter,
				Kind:        StepMalformed,
				Thought:     proposal.Thought,
				Observation: tools.Failure(correction),
				RawOutput:   output,
			})
			iterLog.Correction = correction
			slog.Warn("COORDINATOR: Malformed model output; sent correction", "session_id", session.ID, "iteration", iter, "error", perr)

		case proposal.Final:
			session.FinalAnswer = proposal.FinalAnswer
			session.Reason = StopFinalAnswer
			iterLog.Phase = string(PhaseTerminated)
			c.logIteration(iterLog)
			iterSpan.End()
			c.metrics.runsCompleted.Add(ctx, 1)
			slog.Info("COORDINATOR: Final answer received; ending run", "session_id", session.ID, "iteration", iter, "answer_length", len(proposal.FinalAnswer))
			return session, nil

		default:
			step, took := c.act(iterCtx, session, iter, proposal)
			session.Steps = append(session.Steps, step)
			iterLog.Phase = string(PhaseObserving)
			if step.Kind == StepRejected {
				iterLog.Phase = string(PhaseActing)
			}
			iterLog.ToolCalls = []travelagent.ToolCallLog{{
				Name:     step.Action,
				Input:    step.Input,
				Output:   step.Observation,
				Error:    step.Observation.Error,
				Duration: took,
			}}
		}

		c.logIteration(iterLog)
		iterSpan.End()
	}

	c.forceStop(ctx, session, StopMaxIterations)
	return session, nil
}

func (c *Coordinator) propose(ctx context.Context, state State, deadline time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline.Sub(c.now()))
	defer cancel()

	start := time.Now()
	out, err := c.planner.Propose(ctx, state)
	c.metrics.plannerLatency.Record(ctx, time.Since(start).Seconds())
	return out, err
}

// act executes the proposed tool call, or refuses it when it repeats the
// call that just failed.
func (c *Coordinator) act(ctx context.Context, session *Session, iter int, p Proposal) (Step, time.Duration) {
	step := Step{Iteration: iter, Kind: StepTool, Thought: p.Thought, Action: p.Action, Input: p.Input}

	if c.repeatGuard && len(session.Steps) > 0 {
		prev := session.Steps[len(session.Steps)-1]
		if prev.Kind != StepMalformed && prev.Observation.Failed() &&
			prev.Action == p.Action && prev.Input.Canonical() == p.Input.Canonical() {
			c.metrics.guardRejections.Add(ctx, 1)
			slog.Warn("COORDINATOR: Refused repeated failed tool call", "session_id", session.ID, "tool", p.Action, "iteration", iter)
			step.Kind = StepRejected
			step.Observation = tools.Failure(fmt.Sprintf(
				"This exact call to %s already failed with: %s. Do not repeat it; change the input, use another tool, or give a Final Answer.",
				p.Action, prev.Observation.Error))
			return step, 0
		}
	}

	slog.Info("COORDINATOR: Handling tool call", "session_id", session.ID, "name", p.Action, "iteration", iter)
	c.metrics.toolCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", p.Action)))

	start := time.Now()
	step.Observation = c.toolProvider.Invoke(ctx, p.Action, p.Input)
	took := time.Since(start)
	c.metrics.toolLatency.Record(ctx, took.Seconds(), metric.WithAttributes(attribute.String("tool", p.Action)))

	if step.Observation.Failed() {
		c.metrics.toolErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", p.Action)))
		slog.Info("COORDINATOR: Tool returned error observation", "session_id", session.ID, "name", p.Action, "error", step.Observation.Error)
	}
	return step, took
}

// forceStop ends the session with an answer rendered from the observations
// collected so far.
func (c *Coordinator) forceStop(ctx context.Context, session *Session, reason StopReason) {
	session.Reason = reason
	it := session.Itinerary()

	lead := "I ran out of planning steps before finishing, so this plan is based on what I found so far."
	if reason == StopTimeout {
		lead = "I ran out of time before finishing, so this plan is based on what I found so far."
	}
	session.FinalAnswer = lead + "\n\n" + it.Render()

	c.metrics.forcedStops.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
	c.metrics.runsCompleted.Add(ctx, 1)
	slog.Warn("COORDINATOR: Forced stop; generated best-effort answer",
		"session_id", session.ID, "reason", reason, "iterations", session.Iterations, "complete", it.Complete())
	c.logIteration(travelagent.IterationLog{
		SessionID: session.ID,
		Iteration: session.Iterations,
		Timestamp: c.now(),
		Phase:     string(PhaseTerminated),
		LLMOutput: session.FinalAnswer,
		Error:     string(reason),
	})
}

// logIteration logs a step using the configured logger, handling errors gracefully
func (c *Coordinator) logIteration(iteration travelagent.IterationLog) {
	if c.logger != nil {
		if err := c.logger.LogIteration(iteration); err != nil {
			slog.Error("Failed to log coordination iteration", "error", err, "iteration", iteration.Iteration)
		}
	}
}
