package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	budgetInputFormat      = `{"flight_cost": 4500, "hotel_cost_per_night": 3000, "number_of_days": 4, "daily_expenses": 1000}`
	quickBudgetInputFormat = `{"total_budget": 50000, "number_of_days": 4, "flight_cost": 4500}`

	defaultDailyExpenses = 1000
	currency             = "INR"
)

type BudgetRequest struct {
	FlightCost        int
	HotelCostPerNight int
	NumberOfDays      int
	DailyExpenses     int
}

type BudgetBreakdown struct {
	TotalEstimate      int     `json:"total_estimate"`
	FlightCost         int     `json:"flight_cost"`
	HotelTotal         int     `json:"hotel_total"`
	HotelPerNight      int     `json:"hotel_per_night"`
	DailyExpensesTotal int     `json:"daily_expenses_total"`
	NumberOfDays       int     `json:"number_of_days"`
	PerDayAverage      float64 `json:"per_day_average"`
	Currency           string  `json:"currency"`
	Summary            string  `json:"summary"`
}

type QuickBudgetRequest struct {
	TotalBudget  int
	NumberOfDays int
	FlightCost   int
}

type BudgetAllocation struct {
	TotalBudget         int     `json:"total_budget"`
	FlightCost          int     `json:"flight_cost"`
	RemainingBudget     int     `json:"remaining_budget"`
	HotelPerNight       float64 `json:"hotel_per_night"`
	DailyExpensesPerDay float64 `json:"daily_expenses_per_day"`
	NumberOfDays        int     `json:"number_of_days"`
	Recommendation      string  `json:"recommendation"`
}

func parseBudgetRequest(params map[string]any) (BudgetRequest, error) {
	var (
		req BudgetRequest
		err error
	)
	if req.FlightCost, err = intParam(params, "flight_cost", 0); err != nil {
		return req, err
	}
	if req.HotelCostPerNight, err = intParam(params, "hotel_cost_per_night", 0); err != nil {
		return req, err
	}
	if req.NumberOfDays, err = intParam(params, "number_of_days", 0); err != nil {
		return req, err
	}
	if req.DailyExpenses, err = intParam(params, "daily_expenses", defaultDailyExpenses); err != nil {
		return req, err
	}
	return req, nil
}

func parseQuickBudgetRequest(params map[string]any) (QuickBudgetRequest, error) {
	var (
		req QuickBudgetRequest
		err error
	)
	if req.TotalBudget, err = intParam(params, "total_budget", 0); err != nil {
		return req, err
	}
	if req.NumberOfDays, err = intParam(params, "number_of_days", 0); err != nil {
		return req, err
	}
	if req.FlightCost, err = intParam(params, "flight_cost", 0); err != nil {
		return req, err
	}
	return req, nil
}

// EstimateBudget totals a trip. The total is exact integer arithmetic; only
// the per-day average is rounded.
func EstimateBudget(req BudgetRequest) (BudgetBreakdown, error) {
	if req.FlightCost == 0 && req.HotelCostPerNight == 0 && req.NumberOfDays == 0 {
		return BudgetBreakdown{}, validationErrorf("flight_cost, hotel_cost_per_night, and number_of_days are required.")
	}
	if req.NumberOfDays == 0 {
		return BudgetBreakdown{}, validationErrorf("number_of_days must be greater than 0.")
	}
	if req.FlightCost < 0 || req.HotelCostPerNight < 0 || req.NumberOfDays < 0 || req.DailyExpenses < 0 {
		return BudgetBreakdown{}, validationErrorf("All costs must be non-negative values.")
	}

	hotelTotal := req.HotelCostPerNight * req.NumberOfDays
	dailyTotal := req.DailyExpenses * req.NumberOfDays
	total := req.FlightCost + hotelTotal + dailyTotal

	return BudgetBreakdown{
		TotalEstimate:      total,
		FlightCost:         req.FlightCost,
		HotelTotal:         hotelTotal,
		HotelPerNight:      req.HotelCostPerNight,
		DailyExpensesTotal: dailyTotal,
		NumberOfDays:       req.NumberOfDays,
		PerDayAverage:      round2(float64(total) / float64(req.NumberOfDays)),
		Currency:           currency,
		Summary:            fmt.Sprintf("Total trip cost: Rs %s for %d days", FormatRupees(total), req.NumberOfDays),
	}, nil
}

// QuickBudget splits what is left after the flight 60/40 between hotel and
// daily spending. Both shares are floored, so they never exceed the remainder.
func QuickBudget(req QuickBudgetRequest) (BudgetAllocation, error) {
	if req.TotalBudget <= 0 || req.NumberOfDays <= 0 {
		return BudgetAllocation{}, validationErrorf("total_budget and number_of_days are required and must be greater than 0.")
	}
	if req.FlightCost < 0 {
		return BudgetAllocation{}, validationErrorf("flight_cost must be non-negative.")
	}
	remaining := req.TotalBudget - req.FlightCost
	if remaining < 0 {
		return BudgetAllocation{}, overBudgetErrorf("Flight cost exceeds total budget. Increase budget or find cheaper flights.")
	}

	hotelBudget := remaining * 6 / 10
	dailyBudget := remaining * 4 / 10
	hotelPerNight := float64(hotelBudget) / float64(req.NumberOfDays)

	return BudgetAllocation{
		TotalBudget:         req.TotalBudget,
		FlightCost:          req.FlightCost,
		RemainingBudget:     remaining,
		HotelPerNight:       round2(hotelPerNight),
		DailyExpensesPerDay: round2(float64(dailyBudget) / float64(req.NumberOfDays)),
		NumberOfDays:        req.NumberOfDays,
		Recommendation: fmt.Sprintf("For Rs %s budget, allocate Rs %.0f/night for hotel",
			FormatRupees(req.TotalBudget), math.RoundToEven(hotelPerNight)),
	}, nil
}

// round2 rounds to cents, ties to even.
func round2(f float64) float64 {
	return math.RoundToEven(f*100) / 100
}

// FormatRupees renders n with comma thousands separators.
func FormatRupees(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg, s = true, s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

type BudgetEstimation struct{}

func NewBudgetEstimation() *BudgetEstimation { return &BudgetEstimation{} }

func (t *BudgetEstimation) Name() string  { return "budget_estimation" }
func (t *BudgetEstimation) Title() string { return "Estimate Trip Budget" }
func (t *BudgetEstimation) Description() string {
	return "Totals a trip: flight_cost + hotel_cost_per_night x number_of_days + daily_expenses (default 1000) x number_of_days, in INR."
}

func (t *BudgetEstimation) InputSchema() *jsonschema.Schema {
	zero := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"flight_cost":          {Type: "integer", Minimum: &zero},
			"hotel_cost_per_night": {Type: "integer", Minimum: &zero},
			"number_of_days":       {Type: "integer", Minimum: &zero},
			"daily_expenses":       {Type: "integer", Minimum: &zero},
		},
		Required: []string{"flight_cost", "hotel_cost_per_night", "number_of_days"},
	}
}

func (t *BudgetEstimation) Run(ctx context.Context, input RawInput) (map[string]any, error) {
	params, err := input.Params(budgetInputFormat)
	if err != nil {
		return nil, err
	}
	req, err := parseBudgetRequest(params)
	if err != nil {
		return nil, err
	}
	out, err := EstimateBudget(req)
	if err != nil {
		return nil, err
	}
	return toMap(out), nil
}

type QuickBudgetCalculator struct{}

func NewQuickBudgetCalculator() *QuickBudgetCalculator { return &QuickBudgetCalculator{} }

func (t *QuickBudgetCalculator) Name() string  { return "quick_budget_calculator" }
func (t *QuickBudgetCalculator) Title() string { return "Allocate Trip Budget" }
func (t *QuickBudgetCalculator) Description() string {
	return "Splits total_budget minus flight_cost into 60% hotel and 40% daily expenses, per night and per day."
}

func (t *QuickBudgetCalculator) InputSchema() *jsonschema.Schema {
	zero := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"total_budget":   {Type: "integer", Minimum: &zero},
			"number_of_days": {Type: "integer", Minimum: &zero},
			"flight_cost":    {Type: "integer", Minimum: &zero},
		},
		Required: []string{"total_budget", "number_of_days"},
	}
}

func (t *QuickBudgetCalculator) Run(ctx context.Context, input RawInput) (map[string]any, error) {
	params, err := input.Params(quickBudgetInputFormat)
	if err != nil {
		return nil, err
	}
	req, err := parseQuickBudgetRequest(params)
	if err != nil {
		return nil, err
	}
	out, err := QuickBudget(req)
	if err != nil {
		return nil, err
	}
	return toMap(out), nil
}
