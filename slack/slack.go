package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	botName      = "pantry-tracker"
	maxErrorBody = 512
)

type webhookMessage struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

// PostMessage sends message to channel as the tracker's bot user. A non-200
// reply is an error carrying the start of the response body.
func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(webhookMessage{
		Channel:  channel,
		Username: botName,
		Text:     message,
	})
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("failed to post message: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}

// ImportSummary formats the message sent after a recipe import.
func ImportSummary(query string, ingredients []string) string {
	var b strings.Builder
	if query != "" {
		fmt.Fprintf(&b, "Imported %d ingredients for *%s*:", len(ingredients), query)
	} else {
		fmt.Fprintf(&b, "Imported %d ingredients:", len(ingredients))
	}
	for _, ing := range ingredients {
		b.WriteString("\n• ")
		b.WriteString(ing)
	}
	return b.String()
}
