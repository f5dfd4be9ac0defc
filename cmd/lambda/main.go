package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"travelagent"
	"travelagent/coordinator"
	"travelagent/coordinator/bedrock"
	"travelagent/tools"
	"travelagent/tools/storage"
	"travelagent/weather"
)

type Params struct {
	Task string `json:"task"`
}

type Results struct {
	Output     string                 `json:"output"`
	SessionID  string                 `json:"session_id"`
	Reason     coordinator.StopReason `json:"reason"`
	Iterations int                    `json:"iterations"`
	Complete   bool                   `json:"complete"`
}

// handler keeps the datasets and the weather gateway warm across invocations.
type handler struct {
	modelConfig travelagent.ModelConfig
	agentConfig travelagent.AgentConfig
	store       *tools.Store
	gateway     *weather.Gateway
	brc         *bedrockruntime.Client
}

func newHandler(ctx context.Context) (*handler, error) {
	var h handler
	if err := envdecode.Decode(&h.modelConfig); err != nil {
		return nil, fmt.Errorf("SETUP: decode model config: %w", err)
	}
	if err := envdecode.Decode(&h.agentConfig); err != nil {
		return nil, fmt.Errorf("SETUP: decode agent config: %w", err)
	}
	var s3Config travelagent.S3Config
	if err := envdecode.Decode(&s3Config); err != nil {
		return nil, fmt.Errorf("SETUP: decode S3 config: %w", err)
	}
	var weatherConfig travelagent.WeatherConfig
	if err := envdecode.Decode(&weatherConfig); err != nil {
		return nil, fmt.Errorf("SETUP: decode weather config: %w", err)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)

	h.store, err = tools.NewStoreFromStates(ctx,
		storage.NewS3State(s3Client, s3Config.Bucket, s3Config.FlightsKey),
		storage.NewS3State(s3Client, s3Config.Bucket, s3Config.HotelsKey),
		storage.NewS3State(s3Client, s3Config.Bucket, s3Config.PlacesKey),
	)
	if err != nil {
		return nil, fmt.Errorf("SETUP: load datasets from S3: %w", err)
	}
	ds := h.store.Dataset()
	slog.Info("SETUP: Datasets loaded from S3", "bucket", s3Config.Bucket, "flights", len(ds.Flights), "hotels", len(ds.Hotels), "places", len(ds.Places))

	h.gateway, err = weather.NewGateway(weather.Config{
		BaseURL:       weatherConfig.BaseURL,
		Timeout:       weatherConfig.Timeout,
		CacheTTL:      weatherConfig.CacheTTL,
		RatePerSecond: weatherConfig.RatePerSecond,
		Burst:         weatherConfig.Burst,
	}, http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("SETUP: create weather gateway: %w", err)
	}

	h.brc = bedrockruntime.NewFromConfig(awsCfg)
	return &h, nil
}

func (h *handler) handle(ctx context.Context, params Params) (Results, error) {
	if params.Task == "" {
		return Results{}, fmt.Errorf("task is required")
	}

	tracerProvider, meterProvider, otelShutdown, err := travelagent.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return Results{}, err
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	llm := bedrock.NewLLMClient(h.brc, bedrock.LLMOptions{
		ModelID:     h.modelConfig.ModelID,
		MaxTokens:   h.modelConfig.MaxTokens,
		Temperature: h.modelConfig.Temperature,
		TopP:        h.modelConfig.TopP,
	})

	session, err := coordinator.NewCoordinator(llm, tools.NewRegistry(h.store, h.gateway),
		coordinator.WithMaxIterations(h.agentConfig.MaxIterations),
		coordinator.WithMaxDuration(h.agentConfig.MaxExecutionTime),
		coordinator.WithRepeatGuard(h.agentConfig.GuardRepeatedFailures),
		coordinator.WithLogger(travelagent.NewStdoutCoordinationLogger()),
		coordinator.WithTracer(tracerProvider.Tracer(travelagent.TracerNameBedrock)),
		coordinator.WithMeter(meterProvider.Meter(travelagent.TracerNameBedrock)),
	).Plan(ctx, params.Task)
	if err != nil {
		slog.Error("RESULT: Error handling task", "error", err)
		return Results{}, err
	}

	return Results{
		Output:     session.FinalAnswer,
		SessionID:  session.ID,
		Reason:     session.Reason,
		Iterations: session.Iterations,
		Complete:   session.Itinerary().Complete(),
	}, nil
}

func main() {
	h, err := newHandler(context.Background())
	if err != nil {
		slog.Error("SETUP: Failed to initialize handler", "error", err)
		panic(err)
	}
	lambda.Start(h.handle)
}
