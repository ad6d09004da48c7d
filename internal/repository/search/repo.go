// Package search runs compiled query bodies against the kind indexes and
// shapes the hits into pages.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
	"github.com/parcelworks/stacker/internal/metrics"
	"github.com/parcelworks/stacker/internal/query"
)

// scanPageSize is the page size for full id scans.
const scanPageSize = 10000

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, index string, body map[string]any, size int) (*db.SearchResult, error)
	Count(ctx context.Context, index string, body map[string]any) (int64, error)
}

// Repo implements index reads.
type Repo struct {
	store    store
	prefix   string
	pageSize int
}

// New creates a search repository. The prefix namespaces index names per
// deployment.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, pageSize: scanPageSize}
}

// Search runs the body against the kind's index. The body is copied before
// sort and cursor are injected, so one compiled body can serve several
// searches. A negative size leaves the engine default in place.
func (r *Repo) Search(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error) {
	req := copyBody(body)
	if len(after) > 0 {
		req["search_after"] = after
	}
	if !srt.IsZero() {
		req["sort"] = query.SortObject(srt.Field(), srt.Order(), 0, k.IDField())
	}

	start := time.Now()
	res, err := r.store.Search(ctx, k.Index(r.prefix), req, size)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", k, err)
	}
	metrics.SearchDuration.WithLabelValues(k.Index(r.prefix)).Observe(time.Since(start).Seconds())

	page := &domsearch.Page{
		Results: make([]map[string]any, 0, len(res.Hits)),
		Total:   res.Total,
	}
	for _, h := range res.Hits {
		page.Results = append(page.Results, h.Source)
	}
	if !srt.IsZero() && len(res.Hits) > 0 {
		page.Cursor = res.Hits[len(res.Hits)-1].Sort
	}
	if _, ok := body["aggs"]; ok {
		page.Aggs = res.Aggregations
	}
	return page, nil
}

// Count counts the documents the body matches in the kind's index.
func (r *Repo) Count(ctx context.Context, k kind.Kind, body map[string]any) (int64, error) {
	n, err := r.store.Count(ctx, k.Index(r.prefix), body)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", k, err)
	}
	return n, nil
}

// IDList scans every hit of the body and collects the values of idField.
// Property documents carry prospect ids as arrays; one level of flattening
// brings those back to a flat list. Mixing scalar and array values is an
// error.
func (r *Repo) IDList(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error) {
	req := copyBody(body)
	req["sort"] = []any{map[string]any{k.IDField(): "asc"}}

	var values []any
	var after []any
	for {
		if after != nil {
			req["search_after"] = after
		}
		res, err := r.store.Search(ctx, k.Index(r.prefix), req, r.pageSize)
		if err != nil {
			return nil, fmt.Errorf("scan %s ids: %w", k, err)
		}
		if len(res.Hits) == 0 {
			break
		}
		for _, h := range res.Hits {
			values = append(values, h.Source[idField])
		}
		after = res.Hits[len(res.Hits)-1].Sort
		if len(res.Hits) < r.pageSize {
			break
		}
	}
	return flattenIDs(values)
}

// copyBody shallow-copies the compiled body. Injected keys are top level
// only, so the nested clauses can stay shared.
func copyBody(body map[string]any) map[string]any {
	req := make(map[string]any, len(body)+2)
	for key, value := range body {
		req[key] = value
	}
	return req
}

// flattenIDs normalizes scanned id values into a flat int64 list. The
// first non-null value decides whether the field is scalar or array
// valued; null values are dropped.
func flattenIDs(values []any) ([]int64, error) {
	var ids []int64
	isList, decided := false, false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !decided {
			_, isList = v.([]any)
			decided = true
		}
		switch t := v.(type) {
		case []any:
			if !isList {
				return nil, domain.ErrMixedIDValues
			}
			for _, inner := range t {
				id, err := toID(inner)
				if err != nil {
					return nil, err
				}
				ids = append(ids, id)
			}
		default:
			if isList {
				return nil, domain.ErrMixedIDValues
			}
			id, err := toID(v)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func toID(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("unexpected id value %T", v)
	}
}
