package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joeshaw/envdecode"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"travelagent"
	"travelagent/coordinator"
	"travelagent/coordinator/bedrock"
	"travelagent/coordinator/claude"
	"travelagent/coordinator/mock"
	"travelagent/coordinator/ollama"
	"travelagent/slack"
)

const defaultTask = "Plan a 3-day trip from Delhi to Goa with a budget of Rs 25000. I enjoy beaches and local food."

type planOptions struct {
	planner      string
	otel         bool
	logFile      bool
	debug        bool
	slackWebhook string
	slackChannel string
}

func newPlanCmd() *cobra.Command {
	opts := planOptions{}
	cmd := &cobra.Command{
		Use:   "plan [request]",
		Short: "Plan a trip from a free-text request",
		Example: `  travelagent plan "3 days from Delhi to Goa, budget Rs 20000"
  MODEL_ID=llama3.2 travelagent plan --planner ollama "Weekend in Jaipur"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := defaultTask
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				task = args[0]
			}
			return runPlan(cmd, opts, task)
		},
	}

	cmd.Flags().StringVar(&opts.planner, "planner", "mock", "planner backend: mock, ollama, bedrock or anthropic")
	cmd.Flags().BoolVar(&opts.otel, "otel", false, "export traces and metrics over OTLP")
	cmd.Flags().BoolVar(&opts.logFile, "log-file", true, "write a coordination log file for the session")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "dump the full session after planning")
	cmd.Flags().StringVar(&opts.slackWebhook, "slack-webhook", "", "post the plan to this Slack incoming webhook (overrides SLACK_WEBHOOK_URL)")
	cmd.Flags().StringVar(&opts.slackChannel, "slack-channel", "", "Slack channel for the plan (overrides SLACK_CHANNEL)")
	return cmd
}

func runPlan(cmd *cobra.Command, opts planOptions, task string) error {
	ctx := cmd.Context()

	a, err := wireApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	planner, modelID, err := newPlanner(ctx, opts.planner, a.agentConfig)
	if err != nil {
		return err
	}

	coordOpts := []coordinator.Option{
		coordinator.WithMaxIterations(a.agentConfig.MaxIterations),
		coordinator.WithMaxDuration(a.agentConfig.MaxExecutionTime),
		coordinator.WithRepeatGuard(a.agentConfig.GuardRepeatedFailures),
	}

	if opts.logFile {
		logger, cleanup, err := newCoordinationLogger(opts.planner, modelID)
		if err != nil {
			return fmt.Errorf("SETUP: create coordination logger: %w", err)
		}
		defer func() {
			if err := cleanup(); err != nil {
				slog.Error("SETUP: Failed to flush coordination log", "error", err)
			}
		}()
		coordOpts = append(coordOpts, coordinator.WithLogger(logger))
	}

	if opts.otel {
		tracerProvider, meterProvider, otelShutdown, err := travelagent.InitOtel(ctx)
		if err != nil {
			return fmt.Errorf("SETUP: initialize OpenTelemetry: %w", err)
		}
		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		name := travelagent.TracerName(opts.planner)
		tracer := tracerProvider.Tracer(name)
		coordOpts = append(coordOpts, coordinator.WithTracer(tracer), coordinator.WithMeter(meterProvider.Meter(name)))

		var span trace.Span
		ctx, span = tracer.Start(ctx, name, trace.WithAttributes(
			attribute.String("planner", opts.planner),
			attribute.String("model.id", modelID),
		))
		defer span.End()
	}

	session, err := coordinator.NewCoordinator(planner, a.registry, coordOpts...).Plan(ctx, task)
	if opts.debug && session != nil {
		travelagent.Dump(cmd.ErrOrStderr(), session)
	}
	if err != nil {
		slog.Error("FAILURE: Error handling task", "error", err)
		return err
	}
	slog.Info("RESULT: Planning finished", "session_id", session.ID, "reason", session.Reason, "iterations", session.Iterations, "duration", session.Duration)

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), session.FinalAnswer); err != nil {
		return err
	}

	return postToSlack(ctx, opts, task, session.FinalAnswer)
}

func newPlanner(ctx context.Context, name string, agentConfig travelagent.AgentConfig) (coordinator.Planner, string, error) {
	if name == "mock" {
		return mock.NewTripPlanner(), "mock", nil
	}

	var modelConfig travelagent.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		return nil, "", fmt.Errorf("SETUP: decode model config: %w", err)
	}

	switch name {
	case "ollama":
		llm, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: agentConfig.BaseOllamaEndpoint,
			ModelID:      modelConfig.ModelID,
			Temperature:  float64(modelConfig.Temperature),
			MaxTokens:    int(modelConfig.MaxTokens),
			HTTPClient:   http.DefaultClient,
		})
		if err != nil {
			return nil, "", fmt.Errorf("SETUP: create ollama client: %w", err)
		}
		return llm, modelConfig.ModelID, nil

	case "bedrock":
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, "", fmt.Errorf("SETUP: load AWS config: %w", err)
		}
		return bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		}), modelConfig.ModelID, nil

	case "anthropic":
		var anthropicConfig travelagent.AnthropicConfig
		if err := envdecode.Decode(&anthropicConfig); err != nil {
			return nil, "", fmt.Errorf("SETUP: decode anthropic config: %w", err)
		}
		client := anthropic.NewClient(option.WithAPIKey(anthropicConfig.APIKey))
		return claude.NewClient(&client.Messages, claude.Options{
			Model:       modelConfig.ModelID,
			MaxTokens:   int64(modelConfig.MaxTokens),
			Temperature: float64(modelConfig.Temperature),
		}), modelConfig.ModelID, nil
	}
	return nil, "", fmt.Errorf("unknown planner %q: want mock, ollama, bedrock or anthropic", name)
}

func postToSlack(ctx context.Context, opts planOptions, task, answer string) error {
	var slackConfig travelagent.SlackConfig
	if err := envdecode.Decode(&slackConfig); err != nil {
		slackConfig.Channel = "#travel"
	}
	if opts.slackWebhook != "" {
		slackConfig.WebhookURL = opts.slackWebhook
	}
	if opts.slackChannel != "" {
		slackConfig.Channel = opts.slackChannel
	}
	if slackConfig.WebhookURL == "" {
		return nil
	}

	if err := slack.NewClient(slackConfig.WebhookURL, http.DefaultClient).PostPlan(ctx, slackConfig.Channel, task, answer); err != nil {
		slog.Error("Failed to post result to Slack", "error", err)
		return err
	}
	slog.Info("RESULT: Plan posted to Slack", "channel", slackConfig.Channel)
	return nil
}

func newCoordinationLogger(planner, modelID string) (travelagent.CoordinationLogger, func() error, error) {
	logFilePath := travelagent.NewCoordinationLogFilePath(planner, modelID)
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := travelagent.NewFileCoordinationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
