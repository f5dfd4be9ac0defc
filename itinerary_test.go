package travelagent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/tools"
)

func ok(tool string, data map[string]any) Observation {
	return Observation{Tool: tool, Result: tools.Success(data)}
}

func failed(tool, msg string) Observation {
	return Observation{Tool: tool, Result: tools.Failure(msg)}
}

var (
	flightObs = ok("flight_search", map[string]any{
		"flight_id": "AI883", "airline": "Air India", "from": "Delhi", "to": "Goa",
		"departure_time": "09:15", "arrival_time": "11:50", "price": 4500.0,
		"selection_reason": "Lowest price",
	})
	hotelObs = ok("hotel_recommendation", map[string]any{
		"hotel_name": "Palm Grove", "city": "Goa", "stars": 4.0, "price_per_night": 4000.0,
		"amenities": []any{"Pool", "Spa"}, "selection_reason": "Best value medium budget option",
	})
	weatherObs = ok("weather_for_city", map[string]any{
		"forecast": []any{
			map[string]any{"date": "2026-11-05", "temperature_2m_max": 34.0, "temperature_2m_min": 25.0, "weather_condition": "Clear sky", "weather_code": 0.0},
			map[string]any{"date": "2026-11-06", "temperature_2m_max": 30.0, "temperature_2m_min": 24.0, "weather_condition": "Rain: Moderate", "weather_code": 63.0},
			map[string]any{"date": "2026-11-07", "temperature_2m_max": nil, "temperature_2m_min": nil, "weather_condition": "Unknown", "weather_code": 0.0},
		},
		"location":       map[string]any{"city": "Goa", "timezone": "Asia/Kolkata"},
		"date_range":     map[string]any{"start": "2026-11-05", "end": "2026-11-07"},
		"days_requested": 3.0,
	})
	placesObs = ok("places_discovery", map[string]any{
		"places": []any{
			map[string]any{"name": "Basilica of Bom Jesus", "type": "church", "rating": 4.7},
			map[string]any{"name": "Baga Beach", "type": "beach", "rating": 4.5},
			map[string]any{"name": "Fort Aguada", "type": "fort", "rating": 4.4},
		},
		"count": 3.0,
	})
	budgetObs = ok("budget_estimation", map[string]any{
		"total_estimate": 22500.0, "flight_cost": 4500.0, "hotel_total": 12000.0, "hotel_per_night": 4000.0,
		"daily_expenses_total": 6000.0, "number_of_days": 3.0, "per_day_average": 7500.0, "currency": "INR",
	})
	allocationObs = ok("quick_budget_calculator", map[string]any{
		"total_budget": 15000.0, "flight_cost": 4500.0, "remaining_budget": 10500.0,
		"hotel_per_night": 2100.0, "daily_expenses_per_day": 1400.0, "number_of_days": 3.0,
	})
)

func TestBuildItineraryComplete(t *testing.T) {
	it := BuildItinerary("Delhi to Goa", []Observation{flightObs, hotelObs, weatherObs, placesObs, budgetObs, allocationObs})

	require.True(t, it.Complete())
	assert.Empty(t, it.Gaps)
	assert.Equal(t, 3, it.Days())
	assert.Equal(t, "AI883", it.Flight.FlightID)
	assert.Equal(t, "Palm Grove", it.Hotel.HotelName)
	assert.Len(t, it.Weather.Days, 3)
	assert.Nil(t, it.Weather.Days[2].TempMax)

	out := it.Render()
	for _, want := range []string{
		"**Your 3-Day Trip to Goa (2026-11-05 to 2026-11-07)**",
		"**Flight Selected:**",
		"- Air India AI883 (Rs 4,500) - departs Delhi at 09:15, arrives Goa at 11:50",
		"- Palm Grove (Rs 4,000/night, 4-star)",
		"- Amenities: Pool, Spa",
		"- Day 1 (2026-11-05): Clear sky (25.0 to 34.0 C)",
		"- Day 3 (2026-11-07): Unknown (N/A to N/A C)",
		"1. Basilica of Bom Jesus - church - Rating: 4.7/5",
		"- Day 1: Morning at Basilica of Bom Jesus, afternoon at Baga Beach",
		"- Day 2: Morning at Fort Aguada, afternoon at Basilica of Bom Jesus",
		"- **Total Estimated Cost: Rs 22,500** (Rs 7500.00 per day)",
		"- Hotel: up to Rs 2100.00/night",
		"Rain is forecast",
		"Expect hot afternoons",
		"consider a lower budget level",
		"Book flights early",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Missing Information")
}

func TestBuildItineraryGaps(t *testing.T) {
	tests := []struct {
		name     string
		obs      []Observation
		wantGaps []string
	}{
		{
			name: "nothing looked up",
			wantGaps: []string{
				"Flight: not looked up", "Hotel: not looked up", "Weather: not looked up",
				"Attractions: not looked up", "Budget: not looked up",
			},
		},
		{
			name: "last error is reported",
			obs: []Observation{
				failed("hotel_recommendation", "No hotels found in Atlantis"),
				failed("weather_for_city", "first"),
				failed("weather_for_city", "Weather API request failed: timeout"),
				flightObs, placesObs, budgetObs,
			},
			wantGaps: []string{"Hotel: No hotels found in Atlantis", "Weather: Weather API request failed: timeout"},
		},
		{
			name:     "later success clears an earlier error",
			obs:      []Observation{failed("flight_search", "boom"), flightObs, hotelObs, weatherObs, placesObs, allocationObs},
			wantGaps: nil,
		},
		{
			name:     "unknown tools are ignored",
			obs:      []Observation{ok("book_taxi", map[string]any{"id": 1}), flightObs, hotelObs, weatherObs, placesObs, budgetObs},
			wantGaps: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := BuildItinerary("task", tt.obs)
			assert.Equal(t, tt.wantGaps, it.Gaps)
			if len(tt.wantGaps) > 0 {
				out := it.Render()
				assert.Contains(t, out, "**Missing Information:**")
				for _, g := range tt.wantGaps {
					assert.Contains(t, out, "- "+g)
				}
			}
		})
	}
}

func TestItineraryRenderEmpty(t *testing.T) {
	out := BuildItinerary("", nil).Render()
	assert.True(t, strings.HasPrefix(out, "**Your Trip to your destination**"))
	assert.NotContains(t, out, "**Travel Tips:**")
}
