package pantrytracker

import "time"

type CompletionConfig struct {
	Provider           string  `env:"COMPLETION_PROVIDER,default=openai"`
	OpenAIAPIKey       string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string  `env:"OPENAI_BASE_URL,default=https://api.openai.com/v1"`
	ModelID            string  `env:"MODEL_ID"`
	MaxTokens          int32   `env:"MAX_TOKENS,default=1024"`
	Temperature        float32 `env:"TEMPERATURE,default=0.7"`
	TopP               float32 `env:"TOP_P,default=0.9"`
	BaseOllamaEndpoint string  `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
}

type StoreConfig struct {
	Backend  string `env:"STORE_BACKEND,default=file"`
	FilePath string `env:"STORE_FILE_PATH,default=artifacts/inventory.json"`
	S3Bucket string `env:"STORE_S3_BUCKET"`
	S3Prefix string `env:"STORE_S3_PREFIX,default=inventory/"`
}

type TrackerConfig struct {
	AnimationDelay   time.Duration `env:"ANIMATION_DELAY,default=500ms"`
	OperationLogDir  string        `env:"OPERATION_LOG_DIR"`
	SlackWebhookURL  string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel     string        `env:"SLACK_CHANNEL,default=#pantry"`
	TelemetryEnabled bool          `env:"OTEL_ENABLED,default=false"`
}
