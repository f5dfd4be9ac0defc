package travelagent

import "time"

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type AgentConfig struct {
	ArtifactsFlightsPath  string        `env:"ARTIFACTS_FLIGHTS_PATH,default=artifacts/flights.json"`
	ArtifactsHotelsPath   string        `env:"ARTIFACTS_HOTELS_PATH,default=artifacts/hotels.json"`
	ArtifactsPlacesPath   string        `env:"ARTIFACTS_PLACES_PATH,default=artifacts/places.json"`
	BaseOllamaEndpoint    string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	MaxIterations         int           `env:"MAX_ITERATIONS,default=7"`
	MaxExecutionTime      time.Duration `env:"MAX_EXECUTION_TIME,default=60s"`
	GuardRepeatedFailures bool          `env:"GUARD_REPEATED_FAILURES,default=true"`
}

// WeatherConfig configures the forecast gateway. The provider needs no API key.
type WeatherConfig struct {
	BaseURL       string        `env:"WEATHER_BASE_URL,default=https://api.open-meteo.com/v1/forecast"`
	Timeout       time.Duration `env:"WEATHER_TIMEOUT,default=10s"`
	CacheTTL      time.Duration `env:"WEATHER_CACHE_TTL,default=30m"`
	RatePerSecond float64       `env:"WEATHER_RATE_PER_SECOND,default=5"`
	Burst         int           `env:"WEATHER_BURST,default=5"`
}

// S3Config locates the datasets when running in Lambda.
type S3Config struct {
	Bucket     string `env:"ARTIFACTS_S3_BUCKET,required"`
	FlightsKey string `env:"ARTIFACTS_FLIGHTS_S3_KEY,default=flights.json"`
	HotelsKey  string `env:"ARTIFACTS_HOTELS_S3_KEY,default=hotels.json"`
	PlacesKey  string `env:"ARTIFACTS_PLACES_S3_KEY,default=places.json"`
}

// AnthropicConfig holds the key for the direct Anthropic planner.
type AnthropicConfig struct {
	APIKey string `env:"ANTHROPIC_API_KEY,required"`
}

// SlackConfig locates the incoming webhook used to share finished plans.
type SlackConfig struct {
	WebhookURL string `env:"SLACK_WEBHOOK_URL"`
	Channel    string `env:"SLACK_CHANNEL,default=#travel"`
}
