package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pantrytracker"
	"pantrytracker/completion"
	"pantrytracker/inventory"
	"pantrytracker/recipe"
	"pantrytracker/slack"
	"pantrytracker/tools"
)

type Results struct {
	Output any `json:"output"`
}

func main() {
	// A recipe import in a single invocation needs a query, since nothing
	// carries the generated recipe between invocations.
	fn := func(ctx context.Context, call tools.Call) (Results, error) {
		var completionConfig pantrytracker.CompletionConfig
		if err := envdecode.Decode(&completionConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var storeConfig pantrytracker.StoreConfig
		if err := envdecode.Decode(&storeConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		storeConfig.Backend = "s3"

		var trackerConfig pantrytracker.TrackerConfig
		if err := envdecode.Decode(&trackerConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		tracerProvider, _, otelShutdown, err := pantrytracker.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		ctx, span := tracerProvider.Tracer(pantrytracker.TracerNameLambda).Start(ctx, "Lambda.Invoke", trace.WithAttributes(
			attribute.String("tool.name", call.Name),
			attribute.String("completion.provider", completionConfig.Provider),
		))
		defer span.End()

		store, err := pantrytracker.NewItemStore(ctx, storeConfig)
		if err != nil {
			slog.Error("SETUP: Failed to create S3 store", "error", err)
			return Results{}, err
		}

		httpClient := &http.Client{Timeout: time.Minute}
		completer, err := pantrytracker.NewCompleter(ctx, completionConfig, httpClient)
		if err != nil {
			slog.Warn("SETUP: Recipe generation unavailable", "provider", completionConfig.Provider, "error", err)
			completer = completion.Unavailable(err)
		}
		completer = completion.NewInstrumented(completer, completionConfig.Provider,
			otel.Tracer(pantrytracker.TracerNameCompletion),
			otel.Meter(pantrytracker.TracerNameCompletion))

		ctrl := inventory.NewController(store, recipe.NewGenerator(completer), inventory.Options{
			DeleteDelay: trackerConfig.AnimationDelay,
			MarkerDelay: trackerConfig.AnimationDelay,
			Logger:      pantrytracker.NewStdoutOperationLogger(),
			Tracer:      otel.Tracer(pantrytracker.TracerNameController),
			Meter:       otel.Meter(pantrytracker.TracerNameController),
		})
		// scheduled deletes must land before the invocation returns
		defer ctrl.Close()

		var slackClient pantrytracker.SlackClient
		if trackerConfig.SlackWebhookURL != "" {
			slackClient = slack.NewClient(trackerConfig.SlackWebhookURL, httpClient)
		}

		tool, err := tools.NewRegistry(ctrl, slackClient, trackerConfig.SlackChannel).GetTool(call.Name)
		if err != nil {
			return Results{}, err
		}

		output, err := tool.Run(ctx, call.Input)
		if err != nil {
			slog.Error("RESULT: Error running tool", "tool", call.Name, "error", err)
			return Results{}, fmt.Errorf("%s: %w", call.Name, err)
		}

		return Results{Output: output}, nil
	}

	lambda.Start(fn)
}
