package coordinator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StopSequence ends a model turn before it invents its own observation.
const StopSequence = "\nObservation:"

const systemPromptTemplate = `You are an expert travel consultant. Plan the user's trip using the tools below, in as few steps as possible:
1. Find the best flight.
2. Recommend a hotel within budget.
3. Discover attractions.
4. Check the weather at the destination.
5. Calculate the budget.

Tools:
%s

Tool names: %s

Use EXACTLY this format:
Thought: <your reasoning>
Action: <one tool name>
Action Input: <one JSON object>

Then stop and wait. The tool result is returned to you as:
Observation: <tool result>

Repeat Thought/Action/Action Input as needed. When you have enough information:
Thought: I now have all the information to answer
Final Answer: <the complete trip plan>

Rules:
- Call exactly one tool per step.
- If an observation contains "error", do not call the same tool again with the same or similar input. Explain the problem in the final answer and move on.
- Never repeat an Action with the same Action Input.
- If required information is missing, give a Final Answer that asks for it.

The Final Answer must contain these sections: trip header (days, destination, dates), flight selected, hotel, weather forecast per day, recommended attractions, day-wise itinerary, budget breakdown with total in Rs, travel tips.`

// SystemPrompt describes the tools and the step format.
func SystemPrompt(specs []ToolSpec) string {
	var b strings.Builder
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
		schema := "{}"
		if s.InputSchema != nil {
			if raw, err := json.Marshal(s.InputSchema); err == nil {
				schema = string(raw)
			}
		}
		fmt.Fprintf(&b, "- %s: %s\n  input schema: %s\n", s.Name, s.Description, schema)
	}
	return fmt.Sprintf(systemPromptTemplate, strings.TrimRight(b.String(), "\n"), strings.Join(names, ", "))
}

// RenderScratchpad replays the session so far in the step format.
func RenderScratchpad(state State) string {
	var b strings.Builder
	for _, st := range state.Steps {
		switch st.Kind {
		case StepMalformed:
			b.WriteString(strings.TrimSpace(st.RawOutput))
			b.WriteString("\n")
		default:
			if st.Thought != "" {
				fmt.Fprintf(&b, "Thought: %s\n", st.Thought)
			}
			input, _ := json.Marshal(st.Input)
			fmt.Fprintf(&b, "Action: %s\nAction Input: %s\n", st.Action, input)
		}
		fmt.Fprintf(&b, "Observation: %s\n", st.Observation.String())
	}
	b.WriteString("Thought:")
	return b.String()
}

// UserPrompt is the task followed by the scratchpad.
func UserPrompt(state State) string {
	return fmt.Sprintf("Question: %s\n%s", state.Task, RenderScratchpad(state))
}
