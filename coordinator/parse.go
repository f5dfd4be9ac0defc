package coordinator

import (
	"errors"
	"fmt"
	"strings"

	"travelagent/tools"
)

var ErrMalformed = errors.New("malformed model output")

// ErrTruncated is returned by a Planner, together with the partial text, when
// the model stopped at its output token limit. The coordinator treats it as
// malformed output rather than a planner failure.
var ErrTruncated = errors.New("model output truncated at the token limit")

// Proposal is one parsed model step: either a single tool call or a final
// answer.
type Proposal struct {
	Thought     string
	Action      string
	Input       tools.RawInput
	Final       bool
	FinalAnswer string
}

const (
	markerThought     = "Thought:"
	markerAction      = "Action:"
	markerActionInput = "Action Input:"
	markerObservation = "Observation:"
	markerFinalAnswer = "Final Answer:"
)

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// ParseStep reads model text in the Thought / Action / Action Input or
// Thought / Final Answer format. Anything from a model-written
// "Observation:" onwards is dropped.
func ParseStep(text string) (Proposal, error) {
	var (
		p                   Proposal
		current             *strings.Builder
		thought, input, fin strings.Builder
		actions             []string
		sawInput, sawFinal  bool
	)

scan:
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "*"))
		switch {
		case strings.HasPrefix(trimmed, markerObservation):
			break scan
		case strings.HasPrefix(trimmed, markerFinalAnswer):
			sawFinal = true
			current = &fin
			current.WriteString(after(trimmed, markerFinalAnswer))
			continue
		case sawFinal:
			// Everything after Final Answer belongs to the answer.
			fin.WriteString("\n" + line)
			continue
		case strings.HasPrefix(trimmed, markerThought):
			current = &thought
			current.WriteString(after(trimmed, markerThought))
		case strings.HasPrefix(trimmed, markerActionInput):
			sawInput = true
			current = &input
			current.WriteString(after(trimmed, markerActionInput))
		case strings.HasPrefix(trimmed, markerAction):
			actions = append(actions, after(trimmed, markerAction))
			current = nil
		case current != nil:
			current.WriteString("\n" + line)
		case len(actions) == 0 && !sawInput:
			// Leading text without a marker is treated as thought.
			thought.WriteString(line + "\n")
		}
	}

	p.Thought = strings.TrimSpace(thought.String())

	if sawFinal {
		if len(actions) > 0 {
			return p, malformedf("both an Action and a Final Answer were given")
		}
		p.Final = true
		p.FinalAnswer = strings.TrimSpace(fin.String())
		if p.FinalAnswer == "" {
			return p, malformedf("Final Answer is empty")
		}
		return p, nil
	}

	switch {
	case len(actions) == 0:
		return p, malformedf("no Action or Final Answer found")
	case len(actions) > 1:
		return p, malformedf("%d Actions in one step; only one tool call is allowed per step", len(actions))
	case !sawInput:
		return p, malformedf("Action %q has no Action Input", actions[0])
	}

	p.Action = cleanToolName(actions[0])
	if p.Action == "" {
		return p, malformedf("Action names no tool")
	}
	p.Input = tools.Text(cleanInput(input.String()))
	return p, nil
}

// after returns the text following a marker, without markdown bold residue.
func after(line, marker string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(line, marker), "*"))
}

func cleanToolName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`\"' ")
	return strings.TrimSuffix(s, "()")
}

// cleanInput strips markdown code fences around the input.
func cleanInput(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		s = strings.Trim(s, "`")
	}
	return strings.TrimSpace(s)
}
