package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joeshaw/envdecode"

	"travelagent"
	"travelagent/tools"
	"travelagent/tools/storage"
	"travelagent/weather"
)

// app holds what every command needs: the datasets, the forecast gateway and
// the tool registry over both.
type app struct {
	agentConfig travelagent.AgentConfig
	store       *tools.Store
	gateway     *weather.Gateway
	registry    *tools.Registry
}

func wireApp(ctx context.Context, httpClient travelagent.HTTPClient) (*app, error) {
	var agentConfig travelagent.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		return nil, fmt.Errorf("SETUP: decode agent config: %w", err)
	}

	var weatherConfig travelagent.WeatherConfig
	if err := envdecode.Decode(&weatherConfig); err != nil {
		return nil, fmt.Errorf("SETUP: decode weather config: %w", err)
	}

	store, err := tools.NewStoreFromStates(ctx,
		storage.NewFileState(agentConfig.ArtifactsFlightsPath),
		storage.NewFileState(agentConfig.ArtifactsHotelsPath),
		storage.NewFileState(agentConfig.ArtifactsPlacesPath),
	)
	if err != nil {
		return nil, fmt.Errorf("SETUP: load datasets: %w", err)
	}
	ds := store.Dataset()
	slog.Info("SETUP: Datasets loaded", "flights", len(ds.Flights), "hotels", len(ds.Hotels), "places", len(ds.Places))

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	gateway, err := weather.NewGateway(weather.Config{
		BaseURL:       weatherConfig.BaseURL,
		Timeout:       weatherConfig.Timeout,
		CacheTTL:      weatherConfig.CacheTTL,
		RatePerSecond: weatherConfig.RatePerSecond,
		Burst:         weatherConfig.Burst,
	}, httpClient)
	if err != nil {
		return nil, fmt.Errorf("SETUP: create weather gateway: %w", err)
	}

	return &app{
		agentConfig: agentConfig,
		store:       store,
		gateway:     gateway,
		registry:    tools.NewRegistry(store, gateway),
	}, nil
}

func (a *app) Close() {
	a.gateway.Close()
}
