// Package update applies partial updates to existing documents: field
// assignments from row change events, tag state refreshes and archive
// flips. Every script runs against both indexes because each side
// denormalizes fields of the other.
package update

import (
	"context"
	"fmt"

	"github.com/parcelworks/stacker/internal/domain/change"
	"github.com/parcelworks/stacker/internal/domain/kind"
	"github.com/parcelworks/stacker/internal/query"
)

// Service turns change events into scripted index updates.
type Service struct {
	documents Documents
	tags      TagSource
}

// New creates an update service.
func New(documents Documents, tags TagSource) *Service {
	return &Service{documents: documents, tags: tags}
}

// ApplyRowChange updates every document referencing the changed rows with
// the new field values. An empty change set is a no-op.
func (s *Service) ApplyRowChange(ctx context.Context, row change.Row) error {
	if row.IsEmpty() {
		return nil
	}
	script, err := query.ScriptFromFields(row.Fields)
	if err != nil {
		return fmt.Errorf("render %s change script: %w", row.Entity, err)
	}
	body := query.UpdateByQueryBody(row.Entity.IDField(), row.IDs, script)
	if err := s.documents.UpdateBoth(ctx, body); err != nil {
		return fmt.Errorf("apply %s change: %w", row.Entity, err)
	}
	return nil
}

// ApplyTagChange writes one property's full tag state into every document
// referencing it. tags_length and distress_indicators always move together
// with the tag list.
func (s *Service) ApplyTagChange(ctx context.Context, tags change.Tags) error {
	script, err := query.Script([]query.Assignment{
		{Field: "tags", Value: tags.TagIDs},
		{Field: "tags_length", Value: len(tags.TagIDs)},
		{Field: "distress_indicators", Value: tags.DistressIndicators},
	})
	if err != nil {
		return fmt.Errorf("render tag script: %w", err)
	}
	body := query.UpdateByQueryBody("property_id", []int64{tags.PropertyID}, script)
	if err := s.documents.UpdateBoth(ctx, body); err != nil {
		return fmt.Errorf("apply tag change for property %d: %w", tags.PropertyID, err)
	}
	return nil
}

// RefreshPropertyTags re-reads the relational tag state of each property
// and applies it. Properties without assignments are cleared.
func (s *Service) RefreshPropertyTags(ctx context.Context, propertyIDs []int64) error {
	if len(propertyIDs) == 0 {
		return nil
	}
	states, err := s.tags.TagStates(ctx, propertyIDs)
	if err != nil {
		return fmt.Errorf("refresh property tags: %w", err)
	}
	byID := make(map[int64]change.Tags, len(states))
	for _, st := range states {
		byID[st.PropertyID] = st
	}
	for _, id := range propertyIDs {
		st, ok := byID[id]
		if !ok {
			st = change.Tags{PropertyID: id, TagIDs: []int64{}}
		}
		if err := s.ApplyTagChange(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// RefreshProspectTags refreshes the tag state of the properties the given
// prospects belong to.
func (s *Service) RefreshProspectTags(ctx context.Context, prospectIDs []int64) error {
	if len(prospectIDs) == 0 {
		return nil
	}
	propertyIDs, err := s.tags.PropertyIDs(ctx, prospectIDs)
	if err != nil {
		return fmt.Errorf("refresh prospect tags: %w", err)
	}
	return s.RefreshPropertyTags(ctx, propertyIDs)
}

// ApplyArchive flips is_archived on the documents of the given kind ids.
func (s *Service) ApplyArchive(ctx context.Context, k kind.Kind, ids []int64, archived bool) error {
	if len(ids) == 0 {
		return nil
	}
	entity, err := change.ParseEntity(k.String())
	if err != nil {
		return err
	}
	return s.ApplyRowChange(ctx, change.Row{
		Entity: entity,
		IDs:    ids,
		Fields: map[string]any{"is_archived": archived},
	})
}
