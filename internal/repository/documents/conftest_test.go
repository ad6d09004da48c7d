package documents

import (
	"context"

	"github.com/parcelworks/stacker/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	bulkIndexFn     func(ctx context.Context, index string, docs []db.BulkDoc) ([]db.BulkDoc, error)
	updateByQueryFn func(ctx context.Context, index string, body map[string]any) error
}

func (m *mockStore) BulkIndex(ctx context.Context, index string, docs []db.BulkDoc) ([]db.BulkDoc, error) {
	if m.bulkIndexFn != nil {
		return m.bulkIndexFn(ctx, index, docs)
	}
	return nil, nil
}

func (m *mockStore) UpdateByQuery(ctx context.Context, index string, body map[string]any) error {
	if m.updateByQueryFn != nil {
		return m.updateByQueryFn(ctx, index, body)
	}
	return nil
}
