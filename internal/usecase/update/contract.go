package update

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/change"
)

// Documents applies one scripted update body across both kind indexes.
type Documents interface {
	UpdateBoth(ctx context.Context, body map[string]any) error
}

// TagSource reads current relational tag state.
type TagSource interface {
	TagStates(ctx context.Context, propertyIDs []int64) ([]change.Tags, error)
	PropertyIDs(ctx context.Context, prospectIDs []int64) ([]int64, error)
}
