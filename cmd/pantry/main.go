package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel"

	"pantrytracker"
	"pantrytracker/completion"
	"pantrytracker/inventory"
	"pantrytracker/recipe"
	"pantrytracker/slack"
	"pantrytracker/tools"
)

const usage = `usage: pantry <command> [argument]

commands:
  tools          list the available tools
  dump           print the current inventory state
  <tool-name>    run a tool; the argument fills its single input field`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[1], argOr(2, "")); err != nil {
		slog.Error("RESULT: Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command, arg string) error {
	var completionConfig pantrytracker.CompletionConfig
	if err := envdecode.Decode(&completionConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var storeConfig pantrytracker.StoreConfig
	if err := envdecode.Decode(&storeConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var trackerConfig pantrytracker.TrackerConfig
	if err := envdecode.Decode(&trackerConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	if trackerConfig.TelemetryEnabled {
		_, _, otelShutdown, err := pantrytracker.InitOtel(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()
	}

	store, err := pantrytracker.NewItemStore(ctx, storeConfig)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: time.Minute}
	completer := newCompleter(ctx, completionConfig, httpClient)

	logger, cleanup, err := newOperationLogger(trackerConfig.OperationLogDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush operation log", "error", err)
		}
	}()

	ctrl := inventory.NewController(store, recipe.NewGenerator(completer), inventory.Options{
		DeleteDelay: trackerConfig.AnimationDelay,
		MarkerDelay: trackerConfig.AnimationDelay,
		Logger:      logger,
		Tracer:      otel.Tracer(pantrytracker.TracerNameController),
		Meter:       otel.Meter(pantrytracker.TracerNameController),
	})
	defer ctrl.Close()

	var slackClient pantrytracker.SlackClient
	if trackerConfig.SlackWebhookURL != "" {
		slackClient = slack.NewClient(trackerConfig.SlackWebhookURL, httpClient)
	}
	registry := tools.NewRegistry(ctrl, slackClient, trackerConfig.SlackChannel)

	switch command {
	case "tools":
		for _, tool := range registry.GetTools() {
			fmt.Printf("%-24s %s\n", tool.Name(), tool.Description())
		}
		return nil

	case "dump":
		st, err := ctrl.Refresh(ctx)
		if err != nil {
			return err
		}
		pantrytracker.Dump(st)
		return nil
	}

	tool, err := registry.GetTool(command)
	if err != nil {
		return errors.Join(err, errors.New(usage))
	}

	output, err := tool.Run(ctx, toolInput(tool, arg))
	if err != nil {
		return fmt.Errorf("%s: %w", tool.Name(), err)
	}

	b, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// newCompleter never fails: without a usable provider, inventory commands
// still run and recipe generation yields the error placeholder.
func newCompleter(ctx context.Context, cfg pantrytracker.CompletionConfig, httpClient pantrytracker.HTTPClient) completion.Completer {
	completer, err := pantrytracker.NewCompleter(ctx, cfg, httpClient)
	if err != nil {
		slog.Warn("SETUP: Recipe generation unavailable", "provider", cfg.Provider, "error", err)
		completer = completion.Unavailable(err)
	}
	return completion.NewInstrumented(completer, cfg.Provider,
		otel.Tracer(pantrytracker.TracerNameCompletion),
		otel.Meter(pantrytracker.TracerNameCompletion))
}

// toolInput maps a single command-line argument onto the tool's input field.
func toolInput(tool tools.Tool, arg string) map[string]any {
	input := map[string]any{}
	if arg == "" {
		return input
	}
	schema := tool.InputSchema()
	if len(schema.Required) > 0 {
		input[schema.Required[0]] = arg
		return input
	}
	keys := make([]string, 0, len(schema.Properties))
	for k := range schema.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		input[keys[0]] = arg
	}
	return input
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func newOperationLogger(dir string) (pantrytracker.OperationLogger, func() error, error) {
	if dir == "" {
		return pantrytracker.NewNoOpOperationLogger(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := pantrytracker.NewOperationLogFilePath(dir)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := pantrytracker.NewFileOperationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
