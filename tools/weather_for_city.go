package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"travelagent/weather"
)

// Forecaster is the slice of the weather gateway the tool needs.
type Forecaster interface {
	Forecast(ctx context.Context, city string, days int) (*weather.Forecast, error)
}

type WeatherRequest struct {
	City string
	Days int
}

func parseWeatherRequest(params map[string]any) (WeatherRequest, error) {
	req := WeatherRequest{City: stringParam(params, "city", "")}
	if req.City == "" {
		return req, validationErrorf("city is required. Available cities: %s", strings.Join(weather.KnownCities(), ", "))
	}
	days, err := intParam(params, "days", weather.DefaultDays)
	if err != nil {
		return req, err
	}
	req.Days = weather.ClampDays(days)
	return req, nil
}

type WeatherForCity struct{ forecaster Forecaster }

func NewWeatherForCity(f Forecaster) *WeatherForCity { return &WeatherForCity{forecaster: f} }

func (t *WeatherForCity) Name() string  { return "weather_for_city" }
func (t *WeatherForCity) Title() string { return "City Weather Forecast" }
func (t *WeatherForCity) Description() string {
	return "Daily forecast (max/min temperature, condition) for a supported Indian city: " +
		strings.Join(weather.KnownCities(), ", ") + ". days defaults to 7."
}

func (t *WeatherForCity) InputSchema() *jsonschema.Schema {
	minDays := 1.0
	maxDays := float64(weather.MaxForecastDays)
	cities := make([]any, 0, len(weather.KnownCities()))
	for _, c := range weather.KnownCities() {
		cities = append(cities, c)
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"city": {Type: "string", Enum: cities},
			"days": {Type: "integer", Minimum: &minDays, Maximum: &maxDays},
		},
		Required: []string{"city"},
	}
}

func (t *WeatherForCity) Run(ctx context.Context, input RawInput) (map[string]any, error) {
	params, err := input.Params(`{"city": "Goa", "days": 7}`)
	if err != nil {
		return nil, err
	}
	req, err := parseWeatherRequest(params)
	if err != nil {
		return nil, err
	}
	if t.forecaster == nil {
		return nil, gatewayErrorf("Weather forecasts are not configured.")
	}
	fc, err := t.forecaster.Forecast(ctx, req.City, req.Days)
	switch {
	case errors.Is(err, weather.ErrUnknownCity):
		return nil, notFoundErrorf("%s", err.Error())
	case err != nil:
		return nil, gatewayErrorf("Weather API request failed: %s", err.Error())
	}
	return toMap(fc), nil
}
