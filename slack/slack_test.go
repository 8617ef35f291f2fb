package slack_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"pantrytracker/slack"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type mockDoer struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestPostMessage(t *testing.T) {
	tests := []struct {
		name    string
		doFunc  func(req *http.Request) (*http.Response, error)
		wantErr string
	}{
		{
			name: "success",
			doFunc: func(req *http.Request) (*http.Response, error) {
				var payload map[string]string
				if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
					return nil, err
				}
				if payload["channel"] != "#pantry" || payload["username"] != "pantry-tracker" ||
					payload["text"] != "Imported 1 ingredients:\n• salt" {
					return nil, fmt.Errorf("unexpected payload %v", payload)
				}
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("ok"))}, nil
			},
			wantErr: "",
		},
		{
			name: "failure status",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request", Body: io.NopCloser(bytes.NewBufferString("bad request"))}, nil
			},
			wantErr: "failed to post message: 400 Bad Request: bad request",
		},
		{
			name: "do error",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("network error")
			},
			wantErr: "post slack message: network error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := slack.NewClient("http://example.com/webhook", &mockDoer{doFunc: tt.doFunc})
			must.NotNil(t, client)
			err := client.PostMessage(context.Background(), "#pantry", slack.ImportSummary("", []string{"salt"}))
			if tt.wantErr == "" {
				should.NoError(t, err)
				return
			}
			should.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestImportSummary(t *testing.T) {
	should.Equal(t, "Imported 2 ingredients for *pancakes*:\n• 2 eggs\n• 1 cup flour",
		slack.ImportSummary("pancakes", []string{"2 eggs", "1 cup flour"}))
	should.Equal(t, "Imported 0 ingredients:", slack.ImportSummary("", nil))
}
