package pantrytracker

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"pantrytracker/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOperationLogger_Flush(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFileOperationLogger(&buf)

	require.NoError(t, logger.LogOperation(OperationLog{
		ID:        "1",
		Operation: "Add",
		Item:      "egg",
		Timestamp: time.Now(),
		After:     &storage.Record{Quantity: 1},
	}))
	require.NoError(t, logger.LogOperation(OperationLog{ID: "2", Operation: "RemoveAll", Deleted: []string{"egg"}}))
	assert.Zero(t, buf.Len(), "nothing is written before Flush")

	require.NoError(t, logger.Flush())

	var doc struct {
		Session struct {
			Operations []OperationLog `json:"operations"`
		} `json:"inventory_session"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Session.Operations, 2)
	assert.Equal(t, "Add", doc.Session.Operations[0].Operation)
	assert.Equal(t, &storage.Record{Quantity: 1}, doc.Session.Operations[0].After)
	assert.Equal(t, []string{"egg"}, doc.Session.Operations[1].Deleted)
	assert.Empty(t, logger.operations)
}

func TestStdoutOperationLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &StdoutOperationLogger{w: &buf}

	require.NoError(t, logger.LogOperation(OperationLog{ID: "1", Operation: "Remove", Item: "milk", Scheduled: true}))

	var op OperationLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &op))
	assert.Equal(t, "milk", op.Item)
	assert.True(t, op.Scheduled)
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}

func TestNewItemStore(t *testing.T) {
	store, err := NewItemStore(t.Context(), StoreConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, store)

	store, err = NewItemStore(t.Context(), StoreConfig{Backend: "file", FilePath: "inventory.json"})
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, store)

	_, err = NewItemStore(t.Context(), StoreConfig{Backend: "s3"})
	assert.Error(t, err)

	_, err = NewItemStore(t.Context(), StoreConfig{Backend: "dynamo"})
	assert.Error(t, err)
}

func TestNewCompleter(t *testing.T) {
	_, err := NewCompleter(t.Context(), CompletionConfig{Provider: "openai"}, nil)
	assert.Error(t, err, "missing API key")

	c, err := NewCompleter(t.Context(), CompletionConfig{Provider: "ollama", BaseOllamaEndpoint: "http://localhost:11434"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewCompleter(t.Context(), CompletionConfig{Provider: "gemini"}, nil)
	assert.Error(t, err)
}
