package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDoer struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientOpts{})
	require.Error(t, err)

	c, err := NewClient(ClientOpts{APIKey: "sk-test", BaseURL: "http://localhost:8080/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v1/chat/completions", c.endpoint)
	assert.Equal(t, defaultModelID, c.model)
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name        string
		resp        *http.Response
		doErr       error
		want        string
		errContains string
	}{
		{
			name: "first choice content",
			resp: response(http.StatusOK, `{
				"choices": [{"message": {"role": "assistant", "content": "Ingredients:\n- 2 eggs"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 30}
			}`),
			want: "Ingredients:\n- 2 eggs",
		},
		{
			name:        "non-200 status",
			resp:        response(http.StatusUnauthorized, `{"error": "bad key"}`),
			errContains: "bad key",
		},
		{
			name:        "no choices",
			resp:        response(http.StatusOK, `{"choices": []}`),
			errContains: "no choices",
		},
		{
			name:        "invalid json",
			resp:        response(http.StatusOK, `not json`),
			errContains: "decode",
		},
		{
			name:        "transport error",
			doErr:       errors.New("connection refused"),
			errContains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *http.Request
			var body wireRequest
			c, err := NewClient(ClientOpts{
				APIKey: "sk-test",
				HTTPClient: &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
					captured = req
					b, _ := io.ReadAll(req.Body)
					_ = json.Unmarshal(b, &body)
					return tt.resp, tt.doErr
				}},
			})
			require.NoError(t, err)

			got, err := c.Complete(context.Background(), "Provide a recipe for: pancakes")
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.Equal(t, "Bearer sk-test", captured.Header.Get("Authorization"))
			assert.Equal(t, defaultModelID, body.Model)
			require.Len(t, body.Messages, 1)
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Equal(t, "Provide a recipe for: pancakes", body.Messages[0].Content)
		})
	}
}

func TestClient_CompleteTruncatesErrorBody(t *testing.T) {
	c, err := NewClient(ClientOpts{
		APIKey: "sk-test",
		HTTPClient: &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
			return response(http.StatusInternalServerError, strings.Repeat("x", 4*maxErrorBody)), nil
		}},
	})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "Provide a recipe for: pancakes")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "openai returned"))
	assert.Equal(t, maxErrorBody, strings.Count(err.Error(), "x"))
}
