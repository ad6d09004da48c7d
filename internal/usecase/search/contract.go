package search

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
)

// Index defines the storage contract for index reads.
type Index interface {
	Search(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error)
	IDList(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error)
}

// Counter reads per-company document totals.
type Counter interface {
	TotalsByCompany(ctx context.Context, companyID int64, body map[string]any) (*domsearch.Totals, error)
}
