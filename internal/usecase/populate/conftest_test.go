package populate

import (
	"context"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain/kind"
)

// mockProjector implements the Projector contract for tests.
type mockProjector struct {
	byCompanyFn func(ctx context.Context, k kind.Kind, companyID int64, batch int, fn func([]db.BulkDoc) error) error
	byIDsFn     func(ctx context.Context, k kind.Kind, ids []int64) ([]db.BulkDoc, error)
}

func (m *mockProjector) ByCompany(ctx context.Context, k kind.Kind, companyID int64, batch int, fn func([]db.BulkDoc) error) error {
	if m.byCompanyFn != nil {
		return m.byCompanyFn(ctx, k, companyID, batch, fn)
	}
	return nil
}

func (m *mockProjector) ByIDs(ctx context.Context, k kind.Kind, ids []int64) ([]db.BulkDoc, error) {
	if m.byIDsFn != nil {
		return m.byIDsFn(ctx, k, ids)
	}
	return nil, nil
}

// mockLoader implements the Loader contract for tests.
type mockLoader struct {
	indexAllFn func(ctx context.Context, k kind.Kind, docs []db.BulkDoc) error
}

func (m *mockLoader) IndexAll(ctx context.Context, k kind.Kind, docs []db.BulkDoc) error {
	if m.indexAllFn != nil {
		return m.indexAllFn(ctx, k, docs)
	}
	return nil
}

// mockAdmin implements the IndexAdmin contract for tests.
type mockAdmin struct {
	createIndexFn func(ctx context.Context, index string, definition map[string]any) error
	deleteIndexFn func(ctx context.Context, index string) error
}

func (m *mockAdmin) CreateIndex(ctx context.Context, index string, definition map[string]any) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, index, definition)
	}
	return nil
}

func (m *mockAdmin) DeleteIndex(ctx context.Context, index string) error {
	if m.deleteIndexFn != nil {
		return m.deleteIndexFn(ctx, index)
	}
	return nil
}

// mockLinks implements the Links contract for tests.
type mockLinks struct {
	propertyIDsFn func(ctx context.Context, prospectIDs []int64) ([]int64, error)
}

func (m *mockLinks) PropertyIDs(ctx context.Context, prospectIDs []int64) ([]int64, error) {
	if m.propertyIDsFn != nil {
		return m.propertyIDsFn(ctx, prospectIDs)
	}
	return nil, nil
}
