// Package openai is a Completer backed by the OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModelID = "gpt-3.5-turbo"
	maxErrorBody   = 512
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientOpts struct {
	APIKey      string
	BaseURL     string
	ModelID     string
	MaxTokens   int32
	Temperature float32
	HTTPClient  doer
}

type Client struct {
	apiKey     string
	endpoint   string
	model      string
	maxTokens  int32
	temp       float32
	httpClient doer
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai: missing API key")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	return &Client{
		apiKey:     opts.APIKey,
		endpoint:   strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		model:      opts.ModelID,
		maxTokens:  opts.MaxTokens,
		temp:       opts.Temperature,
		httpClient: opts.HTTPClient,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int32     `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends the prompt as a single user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBytes, err := json.Marshal(wireRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temp,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", fmt.Errorf("openai returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("failed to decode openai response: %w", err)
	}
	if len(wr.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	slog.Info("COMPLETION: OpenAI completion succeeded",
		"model", c.model,
		"finish_reason", wr.Choices[0].FinishReason,
		"input_tokens", wr.Usage.PromptTokens,
		"output_tokens", wr.Usage.CompletionTokens,
	)
	return wr.Choices[0].Message.Content, nil
}
