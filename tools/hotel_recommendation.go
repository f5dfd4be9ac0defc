package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const hotelInputFormat = `{"city": "...", "budget_level": "low|medium|flexible"}`

type priceBand struct{ min, max int }

var budgetBands = map[string]priceBand{
	"low":      {0, 3000},
	"medium":   {3000, 6000},
	"flexible": {0, math.MaxInt},
}

type HotelRequest struct {
	City        string
	BudgetLevel string
}

type HotelChoice struct {
	HotelName       string   `json:"hotel_name"`
	City            string   `json:"city"`
	Stars           int      `json:"stars"`
	PricePerNight   int      `json:"price_per_night"`
	Amenities       []string `json:"amenities"`
	SelectionReason string   `json:"selection_reason"`
}

func parseHotelRequest(params map[string]any) (HotelRequest, error) {
	req := HotelRequest{
		City:        stringParam(params, "city", ""),
		BudgetLevel: strings.ToLower(stringParam(params, "budget_level", "medium")),
	}
	if _, ok := budgetBands[req.BudgetLevel]; !ok {
		req.BudgetLevel = "medium"
	}
	return req, requireStrings(field{"city", req.City})
}

// valueScore is stars per thousand rupees a night.
func valueScore(h Hotel) float64 {
	price := h.PricePerNight
	if price < 1 {
		price = 1
	}
	return float64(h.Stars) / (float64(price) / 1000)
}

// SelectHotel returns the best-value hotel in the request's budget band. When
// the band is empty the three cheapest hotels in the city are considered
// instead.
func SelectHotel(hotels []Hotel, req HotelRequest) (HotelChoice, error) {
	var inCity []Hotel
	for _, h := range hotels {
		if strings.EqualFold(strings.TrimSpace(h.City), req.City) {
			inCity = append(inCity, h)
		}
	}
	if len(inCity) == 0 {
		return HotelChoice{}, notFoundErrorf("No hotels found in %s. Try a different city.", req.City)
	}

	band, ok := budgetBands[req.BudgetLevel]
	if !ok {
		req.BudgetLevel = "medium"
		band = budgetBands["medium"]
	}

	var candidates []Hotel
	for _, h := range inCity {
		if h.PricePerNight >= band.min && h.PricePerNight <= band.max {
			candidates = append(candidates, h)
		}
	}
	reason := fmt.Sprintf("Best value %s budget option", req.BudgetLevel)
	if len(candidates) == 0 {
		candidates = append([]Hotel(nil), inCity...)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].PricePerNight < candidates[j].PricePerNight
		})
		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		reason = fmt.Sprintf("No %s budget match; best value among the cheapest options", req.BudgetLevel)
	}

	best := candidates[0]
	bestScore := valueScore(best)
	for _, h := range candidates[1:] {
		if s := valueScore(h); s > bestScore {
			best, bestScore = h, s
		}
	}

	amenities := best.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return HotelChoice{
		HotelName:       best.Name,
		City:            best.City,
		Stars:           best.Stars,
		PricePerNight:   best.PricePerNight,
		Amenities:       amenities,
		SelectionReason: reason,
	}, nil
}

type HotelRecommendation struct{ store *Store }

func NewHotelRecommendation(store *Store) *HotelRecommendation {
	return &HotelRecommendation{store: store}
}

func (t *HotelRecommendation) Name() string  { return "hotel_recommendation" }
func (t *HotelRecommendation) Title() string { return "Recommend Hotel" }
func (t *HotelRecommendation) Description() string {
	return "Recommends the best-value hotel in a city. budget_level is low (up to 3000/night), medium (3000-6000, default) or flexible."
}

func (t *HotelRecommendation) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"city":         {Type: "string"},
			"budget_level": {Type: "string", Enum: []any{"low", "medium", "flexible"}},
		},
		Required: []string{"city"},
	}
}

func (t *HotelRecommendation) Run(ctx context.Context, input RawInput) (map[string]any, error) {
	params, err := input.Params(hotelInputFormat)
	if err != nil {
		return nil, err
	}
	req, err := parseHotelRequest(params)
	if err != nil {
		return nil, err
	}
	choice, err := SelectHotel(t.store.Dataset().Hotels, req)
	if err != nil {
		return nil, err
	}
	return toMap(choice), nil
}
