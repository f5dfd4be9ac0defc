package weather_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagent/weather"
)

type mockDoer struct {
	calls  atomic.Int32
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.calls.Add(1)
	return m.doFunc(req)
}

func okResponse(body string) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}, nil
}

const goaBody = `{
	"timezone": "Asia/Kolkata",
	"daily": {
		"time": ["2026-10-15", "2026-10-16", "2026-10-17"],
		"temperature_2m_max": [31.2, 30.8, 29.5],
		"temperature_2m_min": [24.1, 23.9, 23.0],
		"weather_code": [0, 63, 42]
	}
}`

func fixedClock() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

func TestGateway_Forecast(t *testing.T) {
	var gotURL string
	client := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return okResponse(goaBody)
	}}
	gw, err := weather.NewGateway(weather.Config{}, client, weather.WithClock(fixedClock))
	require.NoError(t, err)
	defer gw.Close()

	fc, err := gw.Forecast(context.Background(), "goa", 3)
	require.NoError(t, err)

	assert.Contains(t, gotURL, "latitude=15.4909")
	assert.Contains(t, gotURL, "longitude=73.8278")
	assert.Contains(t, gotURL, "forecast_days=3")
	assert.Contains(t, gotURL, "timezone=auto")

	assert.Equal(t, "Goa", fc.Location.City)
	assert.Equal(t, "Asia/Kolkata", fc.Location.Timezone)
	require.Len(t, fc.Days, 3)
	assert.Equal(t, "Clear sky", fc.Days[0].Condition)
	assert.Equal(t, "Moderate rain", fc.Days[1].Condition)
	assert.Equal(t, "Unknown", fc.Days[2].Condition)
	assert.Equal(t, 42, fc.Days[2].Code)
	require.NotNil(t, fc.Days[0].TempMax)
	assert.InDelta(t, 31.2, *fc.Days[0].TempMax, 0.001)
	assert.Equal(t, weather.DateRange{Start: "2026-10-15", End: "2026-10-17"}, fc.DateRange)
}

func TestGateway_EmptyDailyFallsBackToClock(t *testing.T) {
	client := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return okResponse(`{"daily": {"time": []}}`)
	}}
	gw, err := weather.NewGateway(weather.Config{}, client, weather.WithClock(fixedClock))
	require.NoError(t, err)

	fc, err := gw.Forecast(context.Background(), "Delhi", 0)
	require.NoError(t, err)
	assert.Empty(t, fc.Days)
	assert.Equal(t, weather.DefaultDays, fc.DaysRequested)
	assert.Equal(t, "UTC", fc.Location.Timezone)
	assert.Equal(t, weather.DateRange{Start: "2026-10-15", End: "2026-10-21"}, fc.DateRange)
}

func TestGateway_Errors(t *testing.T) {
	tests := []struct {
		name    string
		city    string
		doFunc  func(req *http.Request) (*http.Response, error)
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown city",
			city:    "Atlantis",
			wantErr: weather.ErrUnknownCity,
			wantMsg: "City 'Atlantis' not available. Choose from: Ahmedabad, Bangalore",
		},
		{
			name: "transport failure",
			city: "Mumbai",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			wantErr: weather.ErrGateway,
			wantMsg: "connection refused",
		},
		{
			name: "bad status",
			city: "Mumbai",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusBadRequest,
					Status:     "400 Bad Request",
					Body:       io.NopCloser(bytes.NewBufferString(`{"reason": "bad latitude"}`)),
				}, nil
			},
			wantErr: weather.ErrGateway,
			wantMsg: "400 Bad Request",
		},
		{
			name: "undecodable body",
			city: "Mumbai",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return okResponse(`not json`)
			},
			wantErr: weather.ErrGateway,
			wantMsg: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockDoer{doFunc: tt.doFunc}
			gw, err := weather.NewGateway(weather.Config{}, client)
			require.NoError(t, err)

			_, err = gw.Forecast(context.Background(), tt.city, 3)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGateway_CachesForecasts(t *testing.T) {
	client := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return okResponse(goaBody)
	}}
	gw, err := weather.NewGateway(weather.Config{CacheTTL: time.Minute}, client)
	require.NoError(t, err)
	defer gw.Close()

	first, err := gw.Forecast(context.Background(), "Goa", 3)
	require.NoError(t, err)
	second, err := gw.Forecast(context.Background(), "GOA", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestGateway_CircuitOpens(t *testing.T) {
	client := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("timeout")
	}}
	gw, err := weather.NewGateway(weather.Config{}, client, weather.WithBreakerSettings(gobreaker.Settings{
		Name:    "test",
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := gw.Forecast(context.Background(), "Pune", 2)
		require.Error(t, err)
	}

	_, err = gw.Forecast(context.Background(), "Pune", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrGateway)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, 7, weather.ClampDays(0))
	assert.Equal(t, 7, weather.ClampDays(-3))
	assert.Equal(t, 5, weather.ClampDays(5))
	assert.Equal(t, 16, weather.ClampDays(30))
}

func TestLookupAndConditions(t *testing.T) {
	name, c, ok := weather.Lookup("  bangalore ")
	require.True(t, ok)
	assert.Equal(t, "Bangalore", name)
	assert.InDelta(t, 12.9716, c.Latitude, 1e-9)

	_, _, ok = weather.Lookup("Atlantis")
	assert.False(t, ok)

	assert.Len(t, weather.KnownCities(), 10)
	assert.Equal(t, "Ahmedabad", weather.KnownCities()[0])

	assert.Equal(t, "Foggy", weather.Condition(48))
	assert.Equal(t, "Thunderstorm with hail", weather.Condition(99))
	assert.Equal(t, "Unknown", weather.Condition(7))
	assert.True(t, weather.IsWet(61))
	assert.False(t, weather.IsWet(2))
}
