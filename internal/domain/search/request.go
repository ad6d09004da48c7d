package search

import (
	"fmt"

	"github.com/parcelworks/stacker/internal/domain/schema"
)

// Page size bounds for the search endpoint.
const (
	DefaultSize = 100
	MinSize     = 10
	MaxSize     = 100
)

// Cursors carries the per-index search_after keys. Each index pages
// independently; a nil cursor starts that index from the top.
type Cursors struct {
	Properties []any
	Prospects  []any
}

// IsZero reports whether neither cursor is set.
func (c Cursors) IsZero() bool { return c.Properties == nil && c.Prospects == nil }

// Request is a validated stacker search request.
type Request struct {
	companyID int64
	query     map[string]string
	filters   *Filters
	sort      Sort
	size      int
	after     Cursors
}

// NewRequest validates and creates a Request. A zero size defaults to
// DefaultSize; sort may be zero for callers that only resolve ids.
func NewRequest(companyID int64, query map[string]string, filters *Filters, sort Sort, size int, after Cursors) (Request, error) {
	if companyID <= 0 {
		return Request{}, fmt.Errorf("company id is required")
	}
	if size == 0 {
		size = DefaultSize
	}
	if size < MinSize || size > MaxSize {
		return Request{}, fmt.Errorf("size %d out of range %d..%d", size, MinSize, MaxSize)
	}
	for field := range query {
		if _, ok := schema.QueryClause(field, ""); !ok {
			return Request{}, fmt.Errorf("unknown query field %q", field)
		}
	}
	if filters != nil {
		if err := filters.Validate(); err != nil {
			return Request{}, err
		}
	}
	cloned := make(map[string]string, len(query))
	for k, v := range query {
		cloned[k] = v
	}
	return Request{
		companyID: companyID,
		query:     cloned,
		filters:   filters.Clone(),
		sort:      sort,
		size:      size,
		after:     after,
	}, nil
}

// CompanyID returns the tenant scope of the request.
func (r Request) CompanyID() int64 { return r.companyID }

// Query returns a copy of the free-text queries.
func (r Request) Query() map[string]string {
	q := make(map[string]string, len(r.query))
	for k, v := range r.query {
		q[k] = v
	}
	return q
}

// Filters returns a copy of the filter set, nil when none was given.
func (r Request) Filters() *Filters { return r.filters.Clone() }

// Sort returns the sort choice.
func (r Request) Sort() Sort { return r.sort }

// Size returns the page size.
func (r Request) Size() int { return r.size }

// After returns the paging cursors.
func (r Request) After() Cursors { return r.after }
