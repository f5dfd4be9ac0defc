package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"travelagent/coordinator"
)

// TripPlanner is a deterministic planner that walks the tools in a fixed order
// and answers from what they returned. It never calls a model; it exists so
// the loop can be exercised end to end offline.
type TripPlanner struct{}

func NewTripPlanner() *TripPlanner {
	return &TripPlanner{}
}

// Request is what TripPlanner reads out of a free-text task.
type Request struct {
	From        string
	To          string
	Days        int
	Budget      int
	BudgetLevel string
	Interests   []string
}

const defaultTripDays = 3

var (
	routeRe    = regexp.MustCompile(`(?i)\bfrom\s+([a-z][a-z ]*?)\s+to\s+([a-z][a-z ]*?)(?:\s+(?:for|with|on|in|under|and)\b|[,.!?]|$)`)
	toRe       = regexp.MustCompile(`\b(?:[Tt]o|[Ii]n|[Vv]isit)\s+([A-Z][a-z]+(?: [A-Z][a-z]+)?)`)
	daysRe     = regexp.MustCompile(`(?i)(\d+)[\s-]*(?:day|night)s?`)
	budgetRe   = regexp.MustCompile(`(?i)(?:budget\s*(?:of|is|:)?\s*(?:rs\.?|inr|₹)?|rs\.?|inr|₹)\s*([\d,]+)`)
	interestKW = []string{"beach", "museum", "temple", "fort", "palace", "nature", "shopping", "nightlife", "food", "history", "heritage", "adventure", "church", "market"}
)

// ParseRequest extracts the trip parameters from a task.
func ParseRequest(task string) Request {
	req := Request{Days: defaultTripDays, BudgetLevel: "medium"}

	if m := routeRe.FindStringSubmatch(task); m != nil {
		req.From = titleCase(m[1])
		req.To = titleCase(m[2])
	} else if m := toRe.FindStringSubmatch(task); m != nil {
		req.To = titleCase(m[1])
	}
	if m := daysRe.FindStringSubmatch(task); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			req.Days = n
		}
	}
	if m := budgetRe.FindStringSubmatch(task); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			req.Budget = n
		}
	}

	lower := strings.ToLower(task)
	switch {
	case strings.Contains(lower, "luxury"):
		req.BudgetLevel = "flexible"
	case strings.Contains(lower, "cheap"), strings.Contains(lower, "backpack"), strings.Contains(lower, "low budget"):
		req.BudgetLevel = "low"
	}
	for _, kw := range interestKW {
		if strings.Contains(lower, kw) {
			req.Interests = append(req.Interests, kw)
		}
	}
	return req
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

type call struct {
	thought string
	tool    string
	input   map[string]any
}

// Propose returns the next tool call not yet attempted, or the final answer.
func (p *TripPlanner) Propose(ctx context.Context, state coordinator.State) (string, error) {
	req := ParseRequest(state.Task)
	slog.Info("LLM_CLIENT: Invoked", "iteration", state.Iteration, "steps", len(state.Steps), "destination", req.To)

	if req.To == "" {
		return "Thought: The request does not say where to go.\nFinal Answer: Please tell me your destination city (and where you are travelling from) so I can plan the trip.", nil
	}

	attempted := map[string]bool{}
	for _, st := range state.Steps {
		if st.Action != "" {
			attempted[st.Action] = true
		}
	}

	for _, c := range p.plan(req, state) {
		if attempted[c.tool] {
			continue
		}
		b, err := json.Marshal(c.input)
		if err != nil {
			return "", fmt.Errorf("marshal %s input: %w", c.tool, err)
		}
		slog.Info("LLM_CLIENT: Returning tool call", "tool", c.tool)
		return fmt.Sprintf("Thought: %s\nAction: %s\nAction Input: %s", c.thought, c.tool, b), nil
	}

	slog.Info("LLM_CLIENT: Returning final answer")
	return "Thought: I now have all the information to answer\nFinal Answer: " + render(state), nil
}

func (p *TripPlanner) plan(req Request, state coordinator.State) []call {
	var calls []call
	if req.From != "" {
		calls = append(calls, call{
			thought: fmt.Sprintf("I should find the cheapest flight from %s to %s.", req.From, req.To),
			tool:    "flight_search",
			input:   map[string]any{"source_city": req.From, "destination_city": req.To, "preference": "cheapest"},
		})
	}
	calls = append(calls,
		call{
			thought: fmt.Sprintf("Next I need a %s budget hotel in %s.", req.BudgetLevel, req.To),
			tool:    "hotel_recommendation",
			input:   map[string]any{"city": req.To, "budget_level": req.BudgetLevel},
		},
		call{
			thought: fmt.Sprintf("Let me find attractions in %s.", req.To),
			tool:    "places_discovery",
			input:   map[string]any{"city": req.To, "interests": strings.Join(req.Interests, ", ")},
		},
		call{
			thought: fmt.Sprintf("I should check the weather in %s.", req.To),
			tool:    "weather_for_city",
			input:   map[string]any{"city": req.To, "days": req.Days},
		},
	)

	flightCost, hotelPerNight := 0, 0
	for _, o := range state.Observations() {
		if o.Result.Failed() {
			continue
		}
		switch o.Tool {
		case "flight_search":
			flightCost = intOf(o.Result.Data["price"])
		case "hotel_recommendation":
			hotelPerNight = intOf(o.Result.Data["price_per_night"])
		}
	}
	calls = append(calls, call{
		thought: "Now I can estimate the total budget.",
		tool:    "budget_estimation",
		input: map[string]any{
			"flight_cost":          flightCost,
			"hotel_cost_per_night": hotelPerNight,
			"number_of_days":       req.Days,
		},
	})
	if req.Budget > 0 {
		calls = append(calls, call{
			thought: fmt.Sprintf("The traveller has Rs %d; let me see how to split it.", req.Budget),
			tool:    "quick_budget_calculator",
			input:   map[string]any{"total_budget": req.Budget, "number_of_days": req.Days, "flight_cost": flightCost},
		})
	}
	return calls
}

func render(state coordinator.State) string {
	s := coordinator.Session{Task: state.Task, Steps: state.Steps}
	return s.Itinerary().Render()
}

func intOf(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}
