// Package populate owns the index lifecycle and bulk population: creating
// and deleting the kind indexes, full per-company loads and targeted
// refreshes. Populating is always a full re-projection; partial updates
// live elsewhere.
package populate

import (
	"context"
	"errors"
	"fmt"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain/kind"
	"github.com/parcelworks/stacker/internal/domain/schema"
)

// Service populates the kind indexes from the relational store.
type Service struct {
	projector Projector
	loader    Loader
	admin     IndexAdmin
	links     Links
	prefix    string
	batch     int
}

// New creates a populate service. The prefix namespaces index names per
// deployment; batch bounds one projection batch handed to the loader.
func New(projector Projector, loader Loader, admin IndexAdmin, links Links, prefix string, batch int) *Service {
	return &Service{
		projector: projector,
		loader:    loader,
		admin:     admin,
		links:     links,
		prefix:    prefix,
		batch:     batch,
	}
}

// CreateIndexes creates both kind indexes with the shared mapping. An
// index that already exists is left untouched.
func (s *Service) CreateIndexes(ctx context.Context) error {
	for _, k := range kind.All() {
		err := s.admin.CreateIndex(ctx, k.Index(s.prefix), schema.Definition())
		if err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create %s index: %w", k, err)
		}
	}
	return nil
}

// DeleteIndexes deletes both kind indexes, ignoring ones already gone.
func (s *Service) DeleteIndexes(ctx context.Context) error {
	for _, k := range kind.All() {
		err := s.admin.DeleteIndex(ctx, k.Index(s.prefix))
		if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("delete %s index: %w", k, err)
		}
	}
	return nil
}

// PopulateCompany loads every document the company owns into both
// indexes, property documents first.
func (s *Service) PopulateCompany(ctx context.Context, companyID int64) error {
	for _, k := range kind.All() {
		err := s.projector.ByCompany(ctx, k, companyID, s.batch, func(docs []db.BulkDoc) error {
			return s.loader.IndexAll(ctx, k, docs)
		})
		if err != nil {
			return fmt.Errorf("populate %s for company %d: %w", k, companyID, err)
		}
	}
	return nil
}

// Refresh re-projects the given documents from the relational rows,
// properties first. Empty id lists are skipped.
func (s *Service) Refresh(ctx context.Context, propertyIDs, prospectIDs []int64) error {
	if err := s.refreshKind(ctx, kind.Property, propertyIDs); err != nil {
		return err
	}
	return s.refreshKind(ctx, kind.Prospect, prospectIDs)
}

// RefreshForProspects refreshes the given prospect documents together
// with the property documents they belong to, so the cross-referenced
// campaign fields stay consistent on both sides.
func (s *Service) RefreshForProspects(ctx context.Context, prospectIDs []int64) error {
	if len(prospectIDs) == 0 {
		return nil
	}
	propertyIDs, err := s.links.PropertyIDs(ctx, prospectIDs)
	if err != nil {
		return fmt.Errorf("resolve properties for prospects: %w", err)
	}
	return s.Refresh(ctx, propertyIDs, prospectIDs)
}

func (s *Service) refreshKind(ctx context.Context, k kind.Kind, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	docs, err := s.projector.ByIDs(ctx, k, ids)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", k, err)
	}
	if err := s.loader.IndexAll(ctx, k, docs); err != nil {
		return fmt.Errorf("refresh %s: %w", k, err)
	}
	return nil
}
