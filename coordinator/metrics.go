package coordinator

import "go.opentelemetry.io/otel/metric"

type metrics struct {
	runs            metric.Int64Counter
	runsCompleted   metric.Int64Counter
	runsFailed      metric.Int64Counter
	iterations      metric.Int64Counter
	toolCalls       metric.Int64Counter
	toolErrors      metric.Int64Counter
	malformed       metric.Int64Counter
	guardRejections metric.Int64Counter
	forcedStops     metric.Int64Counter
	plannerLatency  metric.Float64Histogram
	toolLatency     metric.Float64Histogram
}

// newMetrics creates the coordinator instruments. Instrument creation errors
// are ignored; the API returns usable no-op instruments alongside them.
func newMetrics(m metric.Meter) metrics {
	var ms metrics
	ms.runs, _ = m.Int64Counter("coordinator_runs_total",
		metric.WithDescription("Total number of planning sessions started"))
	ms.runsCompleted, _ = m.Int64Counter("coordinator_runs_completed_total",
		metric.WithDescription("Total number of planning sessions that produced a final answer"))
	ms.runsFailed, _ = m.Int64Counter("coordinator_runs_failed_total",
		metric.WithDescription("Total number of planning sessions that failed"))
	ms.iterations, _ = m.Int64Counter("coordinator_iterations_total",
		metric.WithDescription("Total number of loop iterations"))
	ms.toolCalls, _ = m.Int64Counter("tool_calls_total",
		metric.WithDescription("Total number of tool calls executed"))
	ms.toolErrors, _ = m.Int64Counter("tool_calls_failed_total",
		metric.WithDescription("Total number of tool calls that returned an error observation"))
	ms.malformed, _ = m.Int64Counter("malformed_outputs_total",
		metric.WithDescription("Total number of model outputs that did not parse"))
	ms.guardRejections, _ = m.Int64Counter("repeat_guard_rejections_total",
		metric.WithDescription("Total number of repeated failed tool calls refused"))
	ms.forcedStops, _ = m.Int64Counter("forced_stops_total",
		metric.WithDescription("Total number of sessions ended by the iteration or time cap"))
	ms.plannerLatency, _ = m.Float64Histogram("planner_response_time_seconds",
		metric.WithDescription("Time taken by the planner to propose a step in seconds"))
	ms.toolLatency, _ = m.Float64Histogram("tool_execution_time_seconds",
		metric.WithDescription("Time taken to execute individual tools in seconds"))
	return ms
}
