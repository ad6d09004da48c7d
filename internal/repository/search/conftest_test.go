package search

import (
	"context"

	"github.com/parcelworks/stacker/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, index string, body map[string]any, size int) (*db.SearchResult, error)
	countFn  func(ctx context.Context, index string, body map[string]any) (int64, error)
}

func (m *mockStore) Search(ctx context.Context, index string, body map[string]any, size int) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body, size)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, index string, body map[string]any) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, body)
	}
	return 0, nil
}
