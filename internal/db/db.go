package db

import (
	"context"
	"time"
)

// DocumentStore is the search-engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type DocumentStore interface {
	Pinger
	BulkIndexer
	Updater
	Searcher
	IndexAdmin
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BulkDoc is one document of a bulk index request.
type BulkDoc struct {
	ID     string
	Source map[string]any
}

// BulkIndexer writes documents in batches. BulkIndex reports the documents
// the store rejected so the caller can decide whether to retry them.
type BulkIndexer interface {
	BulkIndex(ctx context.Context, index string, docs []BulkDoc) (failed []BulkDoc, err error)
}

// Updater runs partial updates against documents matched by a query.
type Updater interface {
	UpdateByQuery(ctx context.Context, index string, body map[string]any) error
}

// Hit is a single search hit: the document source plus its sort key when
// the search was sorted.
type Hit struct {
	Source map[string]any
	Sort   []any
}

// SearchResult holds the hits of one search.
type SearchResult struct {
	Hits         []Hit
	Total        int64
	Aggregations map[string]any
}

// Searcher runs queries against one index.
type Searcher interface {
	Search(ctx context.Context, index string, body map[string]any, size int) (*SearchResult, error)
	Count(ctx context.Context, index string, body map[string]any) (int64, error)
}

// IndexAdmin provides index lifecycle operations.
type IndexAdmin interface {
	CreateIndex(ctx context.Context, index string, definition map[string]any) error
	DeleteIndex(ctx context.Context, index string) error
	IndexExists(ctx context.Context, index string) (bool, error)
}

// KVStore provides the key-value operations the counts cache needs.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}
