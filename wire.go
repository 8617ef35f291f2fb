package pantrytracker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pantrytracker/completion"
	"pantrytracker/completion/bedrock"
	"pantrytracker/completion/ollama"
	"pantrytracker/completion/openai"
	"pantrytracker/storage"
)

// NewItemStore builds the ItemStore selected by cfg.Backend.
func NewItemStore(ctx context.Context, cfg StoreConfig) (storage.ItemStore, error) {
	switch cfg.Backend {
	case "file", "":
		slog.Info("SETUP: Using file inventory store", "path", cfg.FilePath)
		return storage.NewFileStore(cfg.FilePath), nil

	case "memory":
		slog.Info("SETUP: Using in-memory inventory store")
		return storage.NewMemoryStore(), nil

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("missing S3 config: STORE_S3_BUCKET must be set")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		slog.Info("SETUP: Using S3 inventory store", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// NewCompleter builds the completion provider selected by cfg.Provider.
// A nil httpClient uses an http.Client with a one-minute timeout.
func NewCompleter(ctx context.Context, cfg CompletionConfig, httpClient HTTPClient) (completion.Completer, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}

	switch cfg.Provider {
	case "openai", "":
		return openai.NewClient(openai.ClientOpts{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			ModelID:     cfg.ModelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			HTTPClient:  httpClient,
		})

	case "bedrock":
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
			ModelID:     cfg.ModelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		}), nil

	case "ollama":
		return ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.BaseOllamaEndpoint,
			ModelID:      cfg.ModelID,
			HTTPClient:   httpClient,
		}), nil

	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
