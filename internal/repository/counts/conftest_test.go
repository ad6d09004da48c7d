package counts

import (
	"context"
	"time"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain/kind"
)

// mockSearcher implements the searcher consumer interface for tests.
type mockSearcher struct {
	countFn func(ctx context.Context, k kind.Kind, body map[string]any) (int64, error)
	calls   int
}

func (m *mockSearcher) Count(ctx context.Context, k kind.Kind, body map[string]any) (int64, error) {
	m.calls++
	if m.countFn != nil {
		return m.countFn(ctx, k, body)
	}
	return 0, nil
}

// mockKVStore implements the store consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}
