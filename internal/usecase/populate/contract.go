package populate

import (
	"context"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain/kind"
)

// Projector streams projected documents out of the relational store.
type Projector interface {
	ByCompany(ctx context.Context, k kind.Kind, companyID int64, batch int, fn func([]db.BulkDoc) error) error
	ByIDs(ctx context.Context, k kind.Kind, ids []int64) ([]db.BulkDoc, error)
}

// Loader writes projected documents into the kind indexes.
type Loader interface {
	IndexAll(ctx context.Context, k kind.Kind, docs []db.BulkDoc) error
}

// IndexAdmin manages the index lifecycle.
type IndexAdmin interface {
	CreateIndex(ctx context.Context, index string, definition map[string]any) error
	DeleteIndex(ctx context.Context, index string) error
}

// Links resolves prospect ids to the properties they belong to.
type Links interface {
	PropertyIDs(ctx context.Context, prospectIDs []int64) ([]int64, error)
}
