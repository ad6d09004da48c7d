// Package search is the façade over the two kind indexes. One compiled
// body serves every read: the dual-index stacker search, count badges,
// aggregations, and the full id scans behind bulk actions.
package search

import (
	"context"
	"fmt"

	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
	"github.com/parcelworks/stacker/internal/query"
)

// Service handles searches across the property and prospect indexes.
type Service struct {
	index  Index
	counts Counter
}

// New creates a search service.
func New(index Index, counts Counter) *Service {
	return &Service{index: index, counts: counts}
}

// Search runs a compiled body against the named index. The name must be
// one of the two kind index bases.
func (s *Service) Search(ctx context.Context, index string, body map[string]any, size int, srt domsearch.Sort, after []any) (*domsearch.Page, error) {
	k, ok := kindForIndex(index)
	if !ok {
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownIndex, index)
	}
	return s.index.Search(ctx, k, body, srt, after, size)
}

// SearchStacker runs one request against both indexes. The body is
// compiled once and shared; each index pages with its own cursor because
// the hit counts differ. Totals ride along for the header badges.
func (s *Service) SearchStacker(ctx context.Context, req domsearch.Request) (*domsearch.Result, error) {
	body := query.Compile(query.Params{
		CompanyID: req.CompanyID(),
		Query:     req.Query(),
		Filters:   req.Filters(),
	})
	after := req.After()

	prospects, err := s.index.Search(ctx, kind.Prospect, body, req.Sort(), after.Prospects, req.Size())
	if err != nil {
		return nil, err
	}
	properties, err := s.index.Search(ctx, kind.Property, body, req.Sort(), after.Properties, req.Size())
	if err != nil {
		return nil, err
	}

	totals, err := s.Counts(ctx, req.CompanyID())
	if err != nil {
		return nil, err
	}

	return &domsearch.Result{
		Prospects:  prospects,
		Properties: properties,
		Counts:     totals,
	}, nil
}

// Counts returns the company's per-kind document totals.
func (s *Service) Counts(ctx context.Context, companyID int64) (*domsearch.Totals, error) {
	body := query.Compile(query.Params{CompanyID: companyID})
	totals, err := s.counts.TotalsByCompany(ctx, companyID, body)
	if err != nil {
		return nil, fmt.Errorf("count company %d: %w", companyID, err)
	}
	return totals, nil
}

// IDList resolves every id the body matches in the kind's index.
func (s *Service) IDList(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error) {
	return s.index.IDList(ctx, k, body, idField)
}

// Aggregate runs a size-0 search against the named index and returns
// the aggregations.
func (s *Service) Aggregate(ctx context.Context, index string, body map[string]any) (map[string]any, error) {
	page, err := s.Search(ctx, index, body, 0, domsearch.Sort{}, nil)
	if err != nil {
		return nil, err
	}
	return page.Aggs, nil
}

func kindForIndex(index string) (kind.Kind, bool) {
	for _, k := range kind.All() {
		if index == k.IndexBase() {
			return k, true
		}
	}
	return "", false
}
