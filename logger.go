package pantrytracker

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"pantrytracker/storage"
)

// OperationLogger records every inventory mutation for later inspection.
type OperationLogger interface {
	LogOperation(op OperationLog) error
}

// NewOperationLogFilePath returns a timestamped file path for a session's operation log.
func NewOperationLogFilePath(dir string) string {
	if dir == "" {
		dir = "./logs"
	}
	return fmt.Sprintf("%s/%d.operations.json", dir, time.Now().Unix())
}

// OperationLog represents a single controller operation and its effect on storage.
type OperationLog struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Item      string          `json:"item,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Before    *storage.Record `json:"before,omitempty"`
	After     *storage.Record `json:"after,omitempty"`
	Deleted   []string        `json:"deleted,omitempty"`
	Scheduled bool            `json:"scheduled,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// FileOperationLogger accumulates operations and writes them as one document on Flush.
type FileOperationLogger struct {
	operations []OperationLog
	writer     io.Writer
}

func NewFileOperationLogger(writer io.Writer) *FileOperationLogger {
	return &FileOperationLogger{
		operations: make([]OperationLog, 0),
		writer:     writer,
	}
}

// LogOperation buffers op until the next Flush.
func (l *FileOperationLogger) LogOperation(op OperationLog) error {
	l.operations = append(l.operations, op)
	return nil
}

// Flush writes all buffered operations to the writer.
func (l *FileOperationLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"inventory_session": map[string]any{
			"timestamp":  time.Now(),
			"operations": l.operations,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal operation log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write operation log: %w", err)
	}

	l.operations = l.operations[:0]
	return nil
}

// NoOpOperationLogger discards all entries.
type NoOpOperationLogger struct{}

func NewNoOpOperationLogger() *NoOpOperationLogger {
	return &NoOpOperationLogger{}
}

func (nop *NoOpOperationLogger) LogOperation(op OperationLog) error {
	return nil
}

// StdoutOperationLogger writes each operation as a JSON line to stdout (for Lambda/CloudWatch).
type StdoutOperationLogger struct {
	w io.Writer
}

func NewStdoutOperationLogger() *StdoutOperationLogger {
	return &StdoutOperationLogger{w: os.Stdout}
}

func (l *StdoutOperationLogger) LogOperation(op OperationLog) error {
	data, err := json.Marshal(op)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.w, string(data))
	return err
}
