package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/coordinator"
	"travelagent/tools"
	"travelagent/weather"
)

type stubForecaster struct{}

func (stubForecaster) Forecast(ctx context.Context, city string, days int) (*weather.Forecast, error) {
	hi, lo := 31.5, 24.0
	fc := &weather.Forecast{
		Location:      weather.Location{City: city, Timezone: "Asia/Kolkata"},
		DateRange:     weather.DateRange{Start: "2026-01-01", End: "2026-01-03"},
		DaysRequested: days,
	}
	for _, d := range []string{"2026-01-01", "2026-01-02", "2026-01-03"}[:min(days, 3)] {
		fc.Days = append(fc.Days, weather.Day{Date: d, TempMax: &hi, TempMin: &lo, Condition: "Clear sky", Code: 0})
	}
	return fc, nil
}

func testRegistry() *tools.Registry {
	store := tools.NewStore(&tools.Dataset{
		Flights: []tools.Flight{
			{FlightID: "6E201", Airline: "IndiGo", From: "Delhi", To: "Goa", DepartureTime: "06:00", ArrivalTime: "08:40", Price: 6000},
			{FlightID: "AI883", Airline: "Air India", From: "Delhi", To: "Goa", DepartureTime: "09:15", ArrivalTime: "11:50", Price: 4500},
		},
		Hotels: []tools.Hotel{
			{Name: "Palm Grove", City: "Goa", Stars: 4, PricePerNight: 4000, Amenities: []string{"Pool"}},
		},
		Places: []tools.Place{
			{Name: "Baga Beach", City: "Goa", Type: "beach", Rating: 4.5},
			{Name: "Fort Aguada", City: "Goa", Type: "fort", Rating: 4.4},
		},
	})
	return tools.NewRegistry(store, stubForecaster{})
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		task string
		want Request
	}{
		{
			name: "full request",
			task: "Plan a 3-day trip from Delhi to Goa with a budget of Rs 20,000. I love beaches and forts.",
			want: Request{From: "Delhi", To: "Goa", Days: 3, Budget: 20000, BudgetLevel: "medium", Interests: []string{"beach", "fort"}},
		},
		{
			name: "destination only defaults days",
			task: "I want to visit Jaipur",
			want: Request{To: "Jaipur", Days: defaultTripDays, BudgetLevel: "medium"},
		},
		{
			name: "luxury five nights",
			task: "luxury 5 nights from mumbai to goa",
			want: Request{From: "Mumbai", To: "Goa", Days: 5, BudgetLevel: "flexible"},
		},
		{
			name: "no destination",
			task: "plan something fun",
			want: Request{Days: defaultTripDays, BudgetLevel: "medium"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRequest(tt.task))
		})
	}
}

func TestTripPlannerEndToEnd(t *testing.T) {
	c := coordinator.NewCoordinator(NewTripPlanner(), testRegistry(), coordinator.WithMaxIterations(10))

	session, err := c.Plan(context.Background(), "Plan a 3-day trip from Delhi to Goa with a budget of Rs 25000. I like beaches.")
	require.NoError(t, err)

	assert.Equal(t, coordinator.StopFinalAnswer, session.Reason)
	assert.Equal(t, 7, session.Iterations)

	var called []string
	for _, st := range session.Steps {
		assert.False(t, st.Observation.Failed(), "%s failed: %s", st.Action, st.Observation.Error)
		called = append(called, st.Action)
	}
	assert.Equal(t, []string{
		"flight_search", "hotel_recommendation", "places_discovery",
		"weather_for_city", "budget_estimation", "quick_budget_calculator",
	}, called)

	assert.True(t, session.Itinerary().Complete())
	assert.Contains(t, session.FinalAnswer, "AI883")
	assert.Contains(t, session.FinalAnswer, "Palm Grove")
	assert.Contains(t, session.FinalAnswer, "Baga Beach")
	assert.Contains(t, session.FinalAnswer, "**Budget Allocation:**")
	assert.NotContains(t, session.FinalAnswer, "Missing Information")
}

func TestTripPlannerDefaultIterationCap(t *testing.T) {
	// Five tool calls plus the answer fit in the default cap.
	c := coordinator.NewCoordinator(NewTripPlanner(), testRegistry())

	session, err := c.Plan(context.Background(), "Trip from Delhi to Goa for 2 days")
	require.NoError(t, err)
	assert.Equal(t, coordinator.StopFinalAnswer, session.Reason)
	assert.Len(t, session.Steps, 5)
}

func TestTripPlannerMissingDestination(t *testing.T) {
	out, err := NewTripPlanner().Propose(context.Background(), coordinator.State{Task: "plan a holiday"})
	require.NoError(t, err)

	p, err := coordinator.ParseStep(out)
	require.NoError(t, err)
	assert.True(t, p.Final)
	assert.Contains(t, p.FinalAnswer, "destination")
}

func TestTripPlannerToolFailureMovesOn(t *testing.T) {
	c := coordinator.NewCoordinator(NewTripPlanner(), testRegistry(), coordinator.WithMaxIterations(10))

	session, err := c.Plan(context.Background(), "Trip from Delhi to Atlantis for 2 days")
	require.NoError(t, err)

	assert.Equal(t, coordinator.StopFinalAnswer, session.Reason)
	assert.Contains(t, session.FinalAnswer, "Missing Information")
	assert.Contains(t, session.FinalAnswer, "Flight:")
}

func TestScriptedPlanner(t *testing.T) {
	p := NewScriptedPlanner("one", "two")
	ctx := context.Background()

	for _, want := range []string{"one", "two", "two"} {
		got, err := p.Propose(ctx, coordinator.State{})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 3, p.Calls())

	_, err := NewScriptedPlanner().Propose(ctx, coordinator.State{})
	assert.Error(t, err)
}
