package engine

import (
	"time"

	"ammScope/internal/storage"
)

// Checkpoint tracks the last operation whose effects were written to storage.
type Checkpoint struct {
	RunID            string `json:"run_id"`
	LastProcessedSeq uint64 `json:"last_processed_seq"`
	UpdatedAt        string `json:"updated_at"`
}

// CheckpointStore persists checkpoints to a JSON file. A store with no path
// or disabled is a no-op.
type CheckpointStore struct {
	path    string
	enabled bool
}

func NewCheckpointStore(path string, enabled bool) *CheckpointStore {
	return &CheckpointStore{path: path, enabled: enabled && path != ""}
}

func (c *CheckpointStore) Load() (Checkpoint, bool, error) {
	var cp Checkpoint
	if !c.enabled {
		return cp, false, nil
	}
	ok, err := storage.ReadJSONFile(c.path, &cp)
	return cp, ok, err
}

func (c *CheckpointStore) Save(runID string, lastSeq uint64) error {
	if !c.enabled {
		return nil
	}
	return storage.WriteJSONFile(c.path, Checkpoint{
		RunID:            runID,
		LastProcessedSeq: lastSeq,
		UpdatedAt:        time.Now().UTC().Format(time.RFC3339Nano),
	})
}
