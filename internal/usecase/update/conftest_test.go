package update

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/change"
)

// mockDocuments implements the Documents contract for tests.
type mockDocuments struct {
	updateBothFn func(ctx context.Context, body map[string]any) error
	bodies       []map[string]any
}

func (m *mockDocuments) UpdateBoth(ctx context.Context, body map[string]any) error {
	m.bodies = append(m.bodies, body)
	if m.updateBothFn != nil {
		return m.updateBothFn(ctx, body)
	}
	return nil
}

// mockTagSource implements the TagSource contract for tests.
type mockTagSource struct {
	tagStatesFn   func(ctx context.Context, propertyIDs []int64) ([]change.Tags, error)
	propertyIDsFn func(ctx context.Context, prospectIDs []int64) ([]int64, error)
}

func (m *mockTagSource) TagStates(ctx context.Context, propertyIDs []int64) ([]change.Tags, error) {
	if m.tagStatesFn != nil {
		return m.tagStatesFn(ctx, propertyIDs)
	}
	return nil, nil
}

func (m *mockTagSource) PropertyIDs(ctx context.Context, prospectIDs []int64) ([]int64, error) {
	if m.propertyIDsFn != nil {
		return m.propertyIDsFn(ctx, prospectIDs)
	}
	return nil, nil
}
