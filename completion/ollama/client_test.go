package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// mockHTTPClient implements the doer interface for testing
type mockHTTPClient struct {
	response *http.Response
	err      error
	request  *http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.request = req
	return m.response, m.err
}

// createMockResponse creates a mock HTTP response
func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434/"})
	if c.endpoint != "http://localhost:11434/api/chat" {
		t.Errorf("NewClient() endpoint = %v", c.endpoint)
	}
	if c.model != defaultModelID {
		t.Errorf("NewClient() model = %v, want %v", c.model, defaultModelID)
	}
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse *http.Response
		mockError    error
		want         string
		wantErr      bool
	}{
		{
			name: "successful response with content",
			mockResponse: createMockResponse(200, `{
				"message": {"role": "assistant", "content": "Ingredients:\n- 1 cup flour"}
			}`),
			want: "Ingredients:\n- 1 cup flour",
		},
		{
			name:         "undecodable body is returned raw",
			mockResponse: createMockResponse(200, `plain text`),
			want:         "plain text",
		},
		{
			name:         "server error",
			mockResponse: createMockResponse(500, `model not loaded`),
			wantErr:      true,
		},
		{
			name:      "transport error",
			mockError: errors.New("connection refused"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{response: tt.mockResponse, err: tt.mockError}
			c := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", HTTPClient: mock})

			got, err := c.Complete(context.Background(), "Provide a recipe for: bread")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Complete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("Complete() = %q, want %q", got, tt.want)
			}

			var body wireRequest
			b, _ := io.ReadAll(mock.request.Body)
			if err := json.Unmarshal(b, &body); err != nil {
				t.Fatalf("request body: %v", err)
			}
			if body.Stream {
				t.Errorf("request should not stream")
			}
			if len(body.Messages) != 1 || body.Messages[0].Content != "Provide a recipe for: bread" {
				t.Errorf("unexpected messages: %+v", body.Messages)
			}
		})
	}
}
