package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultDays     = 7
	MaxForecastDays = 16

	dateLayout = "2006-01-02"
)

var (
	ErrUnknownCity = errors.New("unknown city")
	ErrGateway     = errors.New("weather provider unavailable")
)

// UnknownCityError names the unsupported city and lists the supported ones.
type UnknownCityError struct{ City string }

func (e *UnknownCityError) Error() string {
	return fmt.Sprintf("City '%s' not available. Choose from: %s", e.City, strings.Join(KnownCities(), ", "))
}

func (e *UnknownCityError) Is(target error) bool { return target == ErrUnknownCity }

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Day struct {
	Date      string   `json:"date"`
	TempMax   *float64 `json:"temperature_2m_max"`
	TempMin   *float64 `json:"temperature_2m_min"`
	Condition string   `json:"weather_condition"`
	Code      int      `json:"weather_code"`
}

type Location struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Forecast is shared between callers through the cache and must not be
// modified.
type Forecast struct {
	Days          []Day     `json:"forecast"`
	Location      Location  `json:"location"`
	DateRange     DateRange `json:"date_range"`
	DaysRequested int       `json:"days_requested"`
}

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	CacheTTL      time.Duration
	RatePerSecond float64
	Burst         int
}

type Option func(*Gateway)

// WithClock replaces time.Now for date range fallbacks.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithBreakerSettings overrides the circuit breaker thresholds.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(g *Gateway) { g.breakerSettings = st }
}

// Gateway fetches daily forecasts from Open-Meteo for the supported cities.
// It is safe for concurrent use.
type Gateway struct {
	baseURL    string
	timeout    time.Duration
	cacheTTL   time.Duration
	httpClient doer
	now        func() time.Time

	breakerSettings gobreaker.Settings
	breaker         *gobreaker.CircuitBreaker
	limiter         *rate.Limiter
	cache           *ristretto.Cache
}

func NewGateway(cfg Config, httpClient doer, opts ...Option) (*Gateway, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	g := &Gateway{
		baseURL:    cfg.BaseURL,
		timeout:    cfg.Timeout,
		cacheTTL:   cfg.CacheTTL,
		httpClient: httpClient,
		now:        time.Now,
		breakerSettings: gobreaker.Settings{
			Name:        "open_meteo",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		},
	}
	if g.baseURL == "" {
		g.baseURL = DefaultBaseURL
	}
	if g.timeout <= 0 {
		g.timeout = 10 * time.Second
	}
	for _, opt := range opts {
		opt(g)
	}

	st := g.breakerSettings
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		slog.Warn("WEATHER: Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}
	// A caller giving up is not a provider failure.
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	g.breaker = gobreaker.NewCircuitBreaker(st)

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	g.limiter = rate.NewLimiter(limit, burst)

	if g.cacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1000,
			MaxCost:     100,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("create forecast cache: %w", err)
		}
		g.cache = cache
	}
	return g, nil
}

// ClampDays applies the default for a missing or zero horizon and caps it at
// what the provider can forecast.
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}

// Forecast returns the daily forecast for city over the next days days.
func (g *Gateway) Forecast(ctx context.Context, city string, days int) (*Forecast, error) {
	name, coords, ok := Lookup(city)
	if !ok {
		return nil, &UnknownCityError{City: strings.TrimSpace(city)}
	}
	days = ClampDays(days)

	key := name + "|" + strconv.Itoa(days)
	if g.cache != nil {
		if v, found := g.cache.Get(key); found {
			if fc, ok := v.(*Forecast); ok {
				slog.Debug("WEATHER: Cache hit", "city", name, "days", days)
				return fc, nil
			}
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrGateway, err)
	}

	out, err := g.breaker.Execute(func() (any, error) {
		return g.fetch(ctx, name, coords, days)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open: %v", ErrGateway, err)
		}
		return nil, err
	}
	fc := out.(*Forecast)

	if g.cache != nil {
		g.cache.SetWithTTL(key, fc, 1, g.cacheTTL)
		g.cache.Wait()
	}
	return fc, nil
}

// Close releases the cache's background goroutines.
func (g *Gateway) Close() {
	if g.cache != nil {
		g.cache.Close()
	}
}

type apiResponse struct {
	Timezone string `json:"timezone"`
	Daily    struct {
		Time        []string   `json:"time"`
		TempMax     []*float64 `json:"temperature_2m_max"`
		TempMin     []*float64 `json:"temperature_2m_min"`
		WeatherCode []*int     `json:"weather_code"`
	} `json:"daily"`
}

func (g *Gateway) fetch(ctx context.Context, city string, coords Coordinates, days int) (*Forecast, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', 4, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Info("WEATHER: Fetching forecast", "city", city, "days", days)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %s: %s", ErrGateway, resp.Status, strings.TrimSpace(string(body)))
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}

	fc := &Forecast{
		Days: make([]Day, 0, len(data.Daily.Time)),
		Location: Location{
			City:      city,
			Latitude:  coords.Latitude,
			Longitude: coords.Longitude,
			Timezone:  data.Timezone,
		},
		DaysRequested: days,
	}
	if fc.Location.Timezone == "" {
		fc.Location.Timezone = "UTC"
	}
	for i, date := range data.Daily.Time {
		d := Day{Date: date}
		if i < len(data.Daily.TempMax) {
			d.TempMax = data.Daily.TempMax[i]
		}
		if i < len(data.Daily.TempMin) {
			d.TempMin = data.Daily.TempMin[i]
		}
		if i < len(data.Daily.WeatherCode) && data.Daily.WeatherCode[i] != nil {
			d.Code = *data.Daily.WeatherCode[i]
		}
		d.Condition = Condition(d.Code)
		fc.Days = append(fc.Days, d)
	}

	if n := len(fc.Days); n > 0 {
		fc.DateRange = DateRange{Start: fc.Days[0].Date, End: fc.Days[n-1].Date}
	} else {
		today := g.now()
		fc.DateRange = DateRange{
			Start: today.Format(dateLayout),
			End:   today.AddDate(0, 0, days-1).Format(dateLayout),
		}
	}
	return fc, nil
}
