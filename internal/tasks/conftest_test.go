package tasks

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/change"
	"github.com/parcelworks/stacker/internal/domain/kind"
)

// mockPopulator implements the Populator contract for tests.
type mockPopulator struct {
	populateCompanyFn     func(ctx context.Context, companyID int64) error
	refreshFn             func(ctx context.Context, propertyIDs, prospectIDs []int64) error
	refreshForProspectsFn func(ctx context.Context, prospectIDs []int64) error
}

func (m *mockPopulator) PopulateCompany(ctx context.Context, companyID int64) error {
	if m.populateCompanyFn != nil {
		return m.populateCompanyFn(ctx, companyID)
	}
	return nil
}

func (m *mockPopulator) Refresh(ctx context.Context, propertyIDs, prospectIDs []int64) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, propertyIDs, prospectIDs)
	}
	return nil
}

func (m *mockPopulator) RefreshForProspects(ctx context.Context, prospectIDs []int64) error {
	if m.refreshForProspectsFn != nil {
		return m.refreshForProspectsFn(ctx, prospectIDs)
	}
	return nil
}

// mockUpdater implements the Updater contract for tests.
type mockUpdater struct {
	applyRowChangeFn      func(ctx context.Context, row change.Row) error
	applyTagChangeFn      func(ctx context.Context, tags change.Tags) error
	refreshPropertyTagsFn func(ctx context.Context, propertyIDs []int64) error
	refreshProspectTagsFn func(ctx context.Context, prospectIDs []int64) error
	applyArchiveFn        func(ctx context.Context, k kind.Kind, ids []int64, archived bool) error
}

func (m *mockUpdater) ApplyRowChange(ctx context.Context, row change.Row) error {
	if m.applyRowChangeFn != nil {
		return m.applyRowChangeFn(ctx, row)
	}
	return nil
}

func (m *mockUpdater) ApplyTagChange(ctx context.Context, tags change.Tags) error {
	if m.applyTagChangeFn != nil {
		return m.applyTagChangeFn(ctx, tags)
	}
	return nil
}

func (m *mockUpdater) RefreshPropertyTags(ctx context.Context, propertyIDs []int64) error {
	if m.refreshPropertyTagsFn != nil {
		return m.refreshPropertyTagsFn(ctx, propertyIDs)
	}
	return nil
}

func (m *mockUpdater) RefreshProspectTags(ctx context.Context, prospectIDs []int64) error {
	if m.refreshProspectTagsFn != nil {
		return m.refreshProspectTagsFn(ctx, prospectIDs)
	}
	return nil
}

func (m *mockUpdater) ApplyArchive(ctx context.Context, k kind.Kind, ids []int64, archived bool) error {
	if m.applyArchiveFn != nil {
		return m.applyArchiveFn(ctx, k, ids, archived)
	}
	return nil
}

// mockExporter implements the Exporter contract for tests.
type mockExporter struct {
	runFn func(ctx context.Context, exportID string, k kind.Kind, companyID int64, ids []int64) error
}

func (m *mockExporter) Run(ctx context.Context, exportID string, k kind.Kind, companyID int64, ids []int64) error {
	if m.runFn != nil {
		return m.runFn(ctx, exportID, k, companyID, ids)
	}
	return nil
}

// mockSkiptracer implements the Skiptracer contract for tests.
type mockSkiptracer struct {
	buildUploadFn func(ctx context.Context, uploadID string, companyID int64, propertyIDs []int64) error
}

func (m *mockSkiptracer) BuildUpload(ctx context.Context, uploadID string, companyID int64, propertyIDs []int64) error {
	if m.buildUploadFn != nil {
		return m.buildUploadFn(ctx, uploadID, companyID, propertyIDs)
	}
	return nil
}
