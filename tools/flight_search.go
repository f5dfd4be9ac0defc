package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const flightInputFormat = `{"source_city": "...", "destination_city": "...", "preference": "cheapest|fastest"}`

type FlightRequest struct {
	SourceCity      string
	DestinationCity string
	Preference      string
}

type FlightChoice struct {
	Flight
	SelectionReason string `json:"selection_reason"`
}

func parseFlightRequest(params map[string]any) (FlightRequest, error) {
	req := FlightRequest{
		SourceCity:      stringParam(params, "source_city", ""),
		DestinationCity: stringParam(params, "destination_city", ""),
		Preference:      strings.ToLower(stringParam(params, "preference", "cheapest")),
	}
	if err := requireStrings(
		field{"source_city", req.SourceCity},
		field{"destination_city", req.DestinationCity},
	); err != nil {
		return req, err
	}
	return req, nil
}

// SelectFlight picks one flight on the requested route. Ties keep the
// first-seen record.
func SelectFlight(flights []Flight, req FlightRequest) (FlightChoice, error) {
	var matches []Flight
	for _, f := range flights {
		if strings.EqualFold(strings.TrimSpace(f.From), req.SourceCity) &&
			strings.EqualFold(strings.TrimSpace(f.To), req.DestinationCity) {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		return FlightChoice{}, notFoundErrorf("No flights found from %s to %s.", req.SourceCity, req.DestinationCity)
	}

	// "fastest" is judged on arrival time, and only when the data carries it.
	if req.Preference == "fastest" && matches[0].ArrivalTime != "" {
		best := matches[0]
		for _, f := range matches[1:] {
			if f.ArrivalTime < best.ArrivalTime {
				best = f
			}
		}
		return FlightChoice{Flight: best, SelectionReason: "Fastest available flight"}, nil
	}

	best := matches[0]
	for _, f := range matches[1:] {
		if f.Price < best.Price {
			best = f
		}
	}
	return FlightChoice{Flight: best, SelectionReason: "Lowest cost among available flights"}, nil
}

type FlightSearch struct{ store *Store }

func NewFlightSearch(store *Store) *FlightSearch { return &FlightSearch{store: store} }

func (t *FlightSearch) Name() string  { return "flight_search" }
func (t *FlightSearch) Title() string { return "Search Flights" }
func (t *FlightSearch) Description() string {
	return "Finds the best flight between two cities. preference is cheapest (default) or fastest."
}

func (t *FlightSearch) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"source_city":      {Type: "string"},
			"destination_city": {Type: "string"},
			"preference":       {Type: "string", Enum: []any{"cheapest", "fastest"}},
		},
		Required: []string{"source_city", "destination_city"},
	}
}

func (t *FlightSearch) Run(ctx context.Context, input RawInput) (map[string]any, error) {
	params, err := input.Params(flightInputFormat)
	if err != nil {
		return nil, err
	}
	req, err := parseFlightRequest(params)
	if err != nil {
		return nil, err
	}
	choice, err := SelectFlight(t.store.Dataset().Flights, req)
	if err != nil {
		return nil, err
	}
	return toMap(choice), nil
}
