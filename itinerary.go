package travelagent

import (
	"encoding/json"
	"fmt"
	"strings"

	"travelagent/tools"
	"travelagent/weather"
)

// Observation is one tool outcome collected during a planning session.
type Observation struct {
	Tool   string
	Input  tools.RawInput
	Result tools.Result
}

// Itinerary is the structured final answer assembled from tool observations.
// A nil section means the data was never obtained; Gaps says why.
type Itinerary struct {
	Task       string
	Flight     *tools.FlightChoice
	Hotel      *tools.HotelChoice
	Weather    *weather.Forecast
	Places     *tools.PlaceDiscovery
	Budget     *tools.BudgetBreakdown
	Allocation *tools.BudgetAllocation
	Gaps       []string
}

type section struct {
	label string
	tools []string
}

var sections = []section{
	{"Flight", []string{"flight_search"}},
	{"Hotel", []string{"hotel_recommendation"}},
	{"Weather", []string{"weather_for_city"}},
	{"Attractions", []string{"places_discovery"}},
	{"Budget", []string{"budget_estimation", "quick_budget_calculator"}},
}

// BuildItinerary keeps the last successful observation per tool. Sections
// with no usable observation get a gap line carrying the last error seen.
func BuildItinerary(task string, observations []Observation) *Itinerary {
	it := &Itinerary{Task: task}
	lastErr := map[string]string{}

	for _, obs := range observations {
		if obs.Result.Failed() {
			lastErr[obs.Tool] = obs.Result.Error
			continue
		}
		var err error
		switch obs.Tool {
		case "flight_search":
			it.Flight, err = decode[tools.FlightChoice](obs.Result.Data)
		case "hotel_recommendation":
			it.Hotel, err = decode[tools.HotelChoice](obs.Result.Data)
		case "weather_for_city":
			it.Weather, err = decode[weather.Forecast](obs.Result.Data)
		case "places_discovery":
			it.Places, err = decode[tools.PlaceDiscovery](obs.Result.Data)
		case "budget_estimation":
			it.Budget, err = decode[tools.BudgetBreakdown](obs.Result.Data)
		case "quick_budget_calculator":
			it.Allocation, err = decode[tools.BudgetAllocation](obs.Result.Data)
		default:
			continue
		}
		if err != nil {
			lastErr[obs.Tool] = err.Error()
		} else {
			delete(lastErr, obs.Tool)
		}
	}

	present := map[string]bool{
		"Flight":      it.Flight != nil,
		"Hotel":       it.Hotel != nil,
		"Weather":     it.Weather != nil,
		"Attractions": it.Places != nil,
		"Budget":      it.Budget != nil || it.Allocation != nil,
	}
	for _, s := range sections {
		if present[s.label] {
			continue
		}
		reason := "not looked up"
		for _, name := range s.tools {
			if msg, ok := lastErr[name]; ok {
				reason = msg
			}
		}
		it.Gaps = append(it.Gaps, fmt.Sprintf("%s: %s", s.label, reason))
	}
	return it
}

func decode[T any](data map[string]any) (*T, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("unreadable observation: %w", err)
	}
	return &v, nil
}

// Complete reports whether every itinerary section has data.
func (it *Itinerary) Complete() bool {
	return it.Flight != nil && it.Hotel != nil && it.Weather != nil && it.Places != nil && it.Budget != nil
}

func (it *Itinerary) destination() string {
	switch {
	case it.Flight != nil && it.Flight.To != "":
		return it.Flight.To
	case it.Hotel != nil && it.Hotel.City != "":
		return it.Hotel.City
	case it.Weather != nil && it.Weather.Location.City != "":
		return it.Weather.Location.City
	}
	return "your destination"
}

// Days is the trip length as far as the observations tell.
func (it *Itinerary) Days() int {
	switch {
	case it.Budget != nil && it.Budget.NumberOfDays > 0:
		return it.Budget.NumberOfDays
	case it.Allocation != nil && it.Allocation.NumberOfDays > 0:
		return it.Allocation.NumberOfDays
	case it.Weather != nil && len(it.Weather.Days) > 0:
		return len(it.Weather.Days)
	}
	return 0
}

// Render formats the itinerary as markdown.
func (it *Itinerary) Render() string {
	var b strings.Builder
	days := it.Days()

	title := "Your Trip to " + it.destination()
	if days > 0 {
		title = fmt.Sprintf("Your %d-Day Trip to %s", days, it.destination())
	}
	if it.Weather != nil && it.Weather.DateRange.Start != "" {
		title += fmt.Sprintf(" (%s to %s)", it.Weather.DateRange.Start, it.Weather.DateRange.End)
	}
	fmt.Fprintf(&b, "**%s**\n", title)

	if f := it.Flight; f != nil {
		b.WriteString("\n**Flight Selected:**\n")
		fmt.Fprintf(&b, "- %s %s (Rs %s) - departs %s at %s, arrives %s at %s\n",
			f.Airline, f.FlightID, tools.FormatRupees(f.Price), f.From, orNA(f.DepartureTime), f.To, orNA(f.ArrivalTime))
		fmt.Fprintf(&b, "- Selection Reason: %s\n", f.SelectionReason)
	}

	if h := it.Hotel; h != nil {
		b.WriteString("\n**Hotel:**\n")
		fmt.Fprintf(&b, "- %s (Rs %s/night, %d-star)\n", h.HotelName, tools.FormatRupees(h.PricePerNight), h.Stars)
		if len(h.Amenities) > 0 {
			fmt.Fprintf(&b, "- Amenities: %s\n", strings.Join(h.Amenities, ", "))
		}
		fmt.Fprintf(&b, "- Selection Reason: %s\n", h.SelectionReason)
	}

	if w := it.Weather; w != nil && len(w.Days) > 0 {
		b.WriteString("\n**Weather Forecast:**\n")
		for i, d := range w.Days {
			fmt.Fprintf(&b, "- Day %d (%s): %s (%s to %s C)\n", i+1, d.Date, d.Condition, temp(d.TempMin), temp(d.TempMax))
		}
	}

	if p := it.Places; p != nil && len(p.Places) > 0 {
		b.WriteString("\n**Recommended Attractions:**\n")
		for i, pl := range p.Places {
			fmt.Fprintf(&b, "%d. %s - %s - Rating: %.1f/5\n", i+1, pl.Name, pl.Type, pl.Rating)
		}
		it.renderDayPlan(&b, days)
	}

	if bd := it.Budget; bd != nil {
		b.WriteString("\n**Budget Breakdown:**\n")
		fmt.Fprintf(&b, "- Flight: Rs %s\n", tools.FormatRupees(bd.FlightCost))
		fmt.Fprintf(&b, "- Hotel (%d nights x Rs %s): Rs %s\n", bd.NumberOfDays, tools.FormatRupees(bd.HotelPerNight), tools.FormatRupees(bd.HotelTotal))
		fmt.Fprintf(&b, "- Food, Transport & Activities: Rs %s\n", tools.FormatRupees(bd.DailyExpensesTotal))
		fmt.Fprintf(&b, "- **Total Estimated Cost: Rs %s** (Rs %.2f per day)\n", tools.FormatRupees(bd.TotalEstimate), bd.PerDayAverage)
	}
	if a := it.Allocation; a != nil {
		b.WriteString("\n**Budget Allocation:**\n")
		fmt.Fprintf(&b, "- Remaining after flight: Rs %s\n", tools.FormatRupees(a.RemainingBudget))
		fmt.Fprintf(&b, "- Hotel: up to Rs %.2f/night\n", a.HotelPerNight)
		fmt.Fprintf(&b, "- Daily expenses: up to Rs %.2f/day\n", a.DailyExpensesPerDay)
	}

	if tips := it.tips(); len(tips) > 0 {
		b.WriteString("\n**Travel Tips:**\n")
		for _, tip := range tips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
	}

	if len(it.Gaps) > 0 {
		b.WriteString("\n**Missing Information:**\n")
		for _, g := range it.Gaps {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}
	return b.String()
}

// renderDayPlan spreads the attractions over the trip days, two per day,
// wrapping around when there are more days than places.
func (it *Itinerary) renderDayPlan(b *strings.Builder, days int) {
	places := it.Places.Places
	if days <= 0 {
		days = (len(places) + 1) / 2
	}
	b.WriteString("\n**Day-wise Itinerary:**\n")
	for d := 0; d < days; d++ {
		morning := places[(2*d)%len(places)]
		fmt.Fprintf(b, "- Day %d: Morning at %s", d+1, morning.Name)
		if len(places) > 1 {
			afternoon := places[(2*d+1)%len(places)]
			fmt.Fprintf(b, ", afternoon at %s", afternoon.Name)
		}
		b.WriteString(", evening exploring local food\n")
	}
}

func (it *Itinerary) tips() []string {
	var tips []string
	if w := it.Weather; w != nil {
		wet, hot := false, false
		for _, d := range w.Days {
			if weather.IsWet(d.Code) {
				wet = true
			}
			if d.TempMax != nil && *d.TempMax >= 33 {
				hot = true
			}
		}
		if wet {
			tips = append(tips, "Rain is forecast on some days; pack an umbrella and plan indoor alternatives.")
		}
		if hot {
			tips = append(tips, "Expect hot afternoons; carry sunscreen and stay hydrated.")
		}
	}
	if it.Hotel != nil && it.Allocation != nil && float64(it.Hotel.PricePerNight) > it.Allocation.HotelPerNight {
		tips = append(tips, fmt.Sprintf("The hotel costs more than the suggested Rs %.0f/night; consider a lower budget level.", it.Allocation.HotelPerNight))
	}
	if it.Flight != nil {
		tips = append(tips, "Book flights early; fares on popular routes rise close to departure.")
	}
	return tips
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func temp(t *float64) string {
	if t == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *t)
}
