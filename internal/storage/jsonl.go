package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ammScope/internal/model"
)

// JsonlStorage appends events and operation errors to two JSONL files.
// An empty errors path discards operation errors.
type JsonlStorage struct {
	eventsPath string
	errorsPath string
	mu         sync.Mutex
}

func NewJsonlStorage(eventsPath, errorsPath string) *JsonlStorage {
	return &JsonlStorage{eventsPath: eventsPath, errorsPath: errorsPath}
}

// PutEventBatch appends a batch of pool events as JSON lines.
func (s *JsonlStorage) PutEventBatch(_ context.Context, events []model.PoolEvent) error {
	if len(events) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(events))
	for _, event := range events {
		values = append(values, event)
	}
	return s.appendLines(s.eventsPath, values)
}

// PutErrorBatch appends a batch of rejected operations as JSON lines.
func (s *JsonlStorage) PutErrorBatch(_ context.Context, errs []model.OperationError) error {
	if len(errs) == 0 || s.errorsPath == "" {
		return nil
	}
	values := make([]interface{}, 0, len(errs))
	for _, e := range errs {
		values = append(values, e)
	}
	return s.appendLines(s.errorsPath, values)
}

func (s *JsonlStorage) appendLines(path string, values []interface{}) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, value := range values {
		line, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
