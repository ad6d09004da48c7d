package action

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/kind"
)

// Searcher resolves id lists and aggregations through the search façade.
type Searcher interface {
	IDList(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error)
	Aggregate(ctx context.Context, index string, body map[string]any) (map[string]any, error)
}

// Deduper collapses prospect ids to one per property.
type Deduper interface {
	OneProspectPerProperty(ctx context.Context, prospectIDs []int64) ([]int64, error)
}

// Queue schedules background index maintenance.
type Queue interface {
	Enqueue(ctx context.Context, kind string, payload any) (string, error)
}
