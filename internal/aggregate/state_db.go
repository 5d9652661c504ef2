package aggregate

import (
	"context"
	"fmt"

	"ammScope/internal/storage/postgres"
)

// DBStateStore keeps the aggregation cursor in the runner_state table under
// Name, so several window sizes can progress independently.
type DBStateStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBStateStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Store == nil {
		return 0, false, nil
	}
	last, ok, err := s.Store.LoadState(ctx, s.Name)
	if err != nil {
		return 0, false, fmt.Errorf("load aggregate state %s: %w", s.Name, err)
	}
	return last, ok, nil
}

func (s *DBStateStore) Save(ctx context.Context, ts uint64) error {
	if s == nil || s.Store == nil {
		return nil
	}
	if err := s.Store.SaveState(ctx, s.Name, ts); err != nil {
		return fmt.Errorf("save aggregate state %s: %w", s.Name, err)
	}
	return nil
}
