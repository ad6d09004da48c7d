// Package events turns upstream change notifications and admin triggers
// into queued index maintenance. Nothing here touches the indexes
// directly; every operation enqueues a task and returns its id.
package events

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/change"
	"github.com/parcelworks/stacker/internal/tasks"
)

// Queue is the consumer interface for task submission (ISP).
type Queue interface {
	Enqueue(ctx context.Context, kind string, payload any) (string, error)
}

// Service schedules index maintenance for change events.
type Service struct {
	queue Queue
}

// New creates an events service.
func New(queue Queue) *Service {
	return &Service{queue: queue}
}

// RowChange schedules a partial update of the documents referencing the
// changed rows.
func (s *Service) RowChange(ctx context.Context, row change.Row) (string, error) {
	if row.IsEmpty() {
		return "", domain.NewValidation("changes", "at least one field is required")
	}
	return s.queue.Enqueue(ctx, tasks.KindRowChange, tasks.RowChangePayload{
		Entity:  row.Entity.String(),
		IDs:     row.IDs,
		Changes: row.Fields,
	})
}

// TagChange schedules a tag-state refresh for one property.
func (s *Service) TagChange(ctx context.Context, tags change.Tags) (string, error) {
	return s.queue.Enqueue(ctx, tasks.KindTagChange, tasks.TagChangePayload{
		PropertyID:         tags.PropertyID,
		TagIDs:             tags.TagIDs,
		DistressIndicators: tags.DistressIndicators,
	})
}

// Populate schedules a from-scratch load of both indexes for each company.
func (s *Service) Populate(ctx context.Context, companyIDs []int64) (string, error) {
	if len(companyIDs) == 0 {
		return "", domain.NewValidation("company_ids", "at least one is required")
	}
	return s.queue.Enqueue(ctx, tasks.KindPopulate, tasks.PopulatePayload{CompanyIDs: companyIDs})
}

// Refresh schedules a re-projection of the given documents from their
// relational rows.
func (s *Service) Refresh(ctx context.Context, propertyIDs, prospectIDs []int64) (string, error) {
	if len(propertyIDs) == 0 && len(prospectIDs) == 0 {
		return "", domain.NewValidation("ids", "at least one property or prospect id is required")
	}
	return s.queue.Enqueue(ctx, tasks.KindRefresh, tasks.RefreshPayload{
		PropertyIDs: propertyIDs,
		ProspectIDs: prospectIDs,
	})
}
