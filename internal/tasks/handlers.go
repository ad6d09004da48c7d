package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parcelworks/stacker/internal/domain/change"
	"github.com/parcelworks/stacker/internal/domain/kind"
)

// Populator rebuilds documents from the relational rows.
type Populator interface {
	PopulateCompany(ctx context.Context, companyID int64) error
	Refresh(ctx context.Context, propertyIDs, prospectIDs []int64) error
	RefreshForProspects(ctx context.Context, prospectIDs []int64) error
}

// Updater applies partial updates to existing documents.
type Updater interface {
	ApplyRowChange(ctx context.Context, row change.Row) error
	ApplyTagChange(ctx context.Context, tags change.Tags) error
	RefreshPropertyTags(ctx context.Context, propertyIDs []int64) error
	RefreshProspectTags(ctx context.Context, prospectIDs []int64) error
	ApplyArchive(ctx context.Context, k kind.Kind, ids []int64, archived bool) error
}

// Exporter streams resolved documents to an export file.
type Exporter interface {
	Run(ctx context.Context, exportID string, k kind.Kind, companyID int64, ids []int64) error
}

// Skiptracer builds the skip-trace upload file for resolved properties.
type Skiptracer interface {
	BuildUpload(ctx context.Context, uploadID string, companyID int64, propertyIDs []int64) error
}

// Handlers binds task kinds to the services that carry them out.
type Handlers struct {
	Populator  Populator
	Updater    Updater
	Exporter   Exporter
	Skiptracer Skiptracer
}

// Map returns the handler registry for NewWorker.
func (h Handlers) Map() map[string]Handler {
	return map[string]Handler{
		KindPopulate:     h.populate,
		KindRefresh:      h.refresh,
		KindRowChange:    h.rowChange,
		KindTagChange:    h.tagChange,
		KindArchive:      h.archive,
		KindExport:       h.export,
		KindPushCampaign: h.pushCampaign,
		KindSkiptrace:    h.skiptrace,
	}
}

func (h Handlers) populate(ctx context.Context, payload []byte) error {
	var p PopulatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode populate payload: %w", err)
	}
	for _, companyID := range p.CompanyIDs {
		if err := h.Populator.PopulateCompany(ctx, companyID); err != nil {
			return err
		}
	}
	return nil
}

func (h Handlers) refresh(ctx context.Context, payload []byte) error {
	var p RefreshPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode refresh payload: %w", err)
	}
	return h.Populator.Refresh(ctx, p.PropertyIDs, p.ProspectIDs)
}

func (h Handlers) rowChange(ctx context.Context, payload []byte) error {
	var p RowChangePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode row change payload: %w", err)
	}
	row, err := change.NewRow(p.Entity, p.IDs, p.Changes)
	if err != nil {
		return err
	}
	return h.Updater.ApplyRowChange(ctx, row)
}

func (h Handlers) tagChange(ctx context.Context, payload []byte) error {
	var p TagChangePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode tag change payload: %w", err)
	}
	switch {
	case p.PropertyID != 0:
		tags, err := change.NewTags(p.PropertyID, p.TagIDs, p.DistressIndicators)
		if err != nil {
			return err
		}
		return h.Updater.ApplyTagChange(ctx, tags)
	case len(p.PropertyIDs) > 0:
		return h.Updater.RefreshPropertyTags(ctx, p.PropertyIDs)
	case len(p.ProspectIDs) > 0:
		return h.Updater.RefreshProspectTags(ctx, p.ProspectIDs)
	default:
		return fmt.Errorf("empty tag change payload")
	}
}

func (h Handlers) archive(ctx context.Context, payload []byte) error {
	var p ArchivePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode archive payload: %w", err)
	}
	k, err := kind.Parse(p.Kind)
	if err != nil {
		return err
	}
	return h.Updater.ApplyArchive(ctx, k, p.IDs, p.Archive)
}

func (h Handlers) export(ctx context.Context, payload []byte) error {
	var p ExportPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode export payload: %w", err)
	}
	k, err := kind.Parse(p.Kind)
	if err != nil {
		return err
	}
	return h.Exporter.Run(ctx, p.ExportID, k, p.CompanyID, p.IDs)
}

func (h Handlers) pushCampaign(ctx context.Context, payload []byte) error {
	var p PushCampaignPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode push payload: %w", err)
	}
	return h.Populator.RefreshForProspects(ctx, p.ProspectIDs)
}

func (h Handlers) skiptrace(ctx context.Context, payload []byte) error {
	var p SkiptracePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode skiptrace payload: %w", err)
	}
	return h.Skiptracer.BuildUpload(ctx, p.UploadID, p.CompanyID, p.PropertyIDs)
}
