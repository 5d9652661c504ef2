package aggregate

import (
	"context"
	"time"

	"ammScope/internal/storage"
)

// StateStore persists the timestamp up to which windows are final.
type StateStore interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, ts uint64) error
}

// FileStateStore keeps the aggregation cursor in a local JSON file.
type FileStateStore struct {
	Path string
}

type stateRecord struct {
	LastTimestamp uint64 `json:"last_timestamp"`
	UpdatedAt     string `json:"updated_at"`
}

func (s *FileStateStore) Load(_ context.Context) (uint64, bool, error) {
	if s == nil || s.Path == "" {
		return 0, false, nil
	}
	var rec stateRecord
	ok, err := storage.ReadJSONFile(s.Path, &rec)
	if err != nil || !ok {
		return 0, false, err
	}
	return rec.LastTimestamp, true, nil
}

func (s *FileStateStore) Save(_ context.Context, ts uint64) error {
	if s == nil || s.Path == "" {
		return nil
	}
	return storage.WriteJSONFile(s.Path, stateRecord{
		LastTimestamp: ts,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}
