package storage

import (
	"context"

	"ammScope/internal/model"
)

// Storage defines a sink for pool events and rejected operations.
type Storage interface {
	PutEventBatch(ctx context.Context, events []model.PoolEvent) error
	PutErrorBatch(ctx context.Context, errs []model.OperationError) error
}

// MultiStorage writes every batch to each sink in order and stops at the
// first failure.
type MultiStorage []Storage

func (m MultiStorage) PutEventBatch(ctx context.Context, events []model.PoolEvent) error {
	for _, sink := range m {
		if err := sink.PutEventBatch(ctx, events); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiStorage) PutErrorBatch(ctx context.Context, errs []model.OperationError) error {
	for _, sink := range m {
		if err := sink.PutErrorBatch(ctx, errs); err != nil {
			return err
		}
	}
	return nil
}
