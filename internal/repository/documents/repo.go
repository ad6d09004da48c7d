// Package documents loads projected documents into the indexes and applies
// scripted updates across both of them.
package documents

import (
	"context"
	"fmt"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/kind"
	"github.com/parcelworks/stacker/internal/metrics"
)

// chunkSize bounds one bulk request. Larger batches trip the engine's
// request size limit on wide documents.
const chunkSize = 5000

// store is the consumer interface for document writes (ISP).
type store interface {
	BulkIndex(ctx context.Context, index string, docs []db.BulkDoc) ([]db.BulkDoc, error)
	UpdateByQuery(ctx context.Context, index string, body map[string]any) error
}

// Repo writes documents into the kind indexes.
type Repo struct {
	store  store
	prefix string
}

// New creates a documents repository. The prefix namespaces index names
// per deployment.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// IndexAll writes the documents into the kind's index in chunks. Rejected
// documents are retried once; documents still rejected after the retry
// fail the load with domain.ErrBulkIndexFailed.
func (r *Repo) IndexAll(ctx context.Context, k kind.Kind, docs []db.BulkDoc) error {
	for start := 0; start < len(docs); start += chunkSize {
		end := min(start+chunkSize, len(docs))
		if err := r.indexChunk(ctx, k, docs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) indexChunk(ctx context.Context, k kind.Kind, chunk []db.BulkDoc) error {
	index := k.Index(r.prefix)

	failed, err := r.store.BulkIndex(ctx, index, chunk)
	if err != nil {
		return fmt.Errorf("bulk index %s: %w", k, err)
	}
	if len(failed) == 0 {
		metrics.DocumentsIndexedTotal.WithLabelValues(index).Add(float64(len(chunk)))
		return nil
	}

	metrics.BulkRetriesTotal.WithLabelValues(index).Inc()
	failed, err = r.store.BulkIndex(ctx, index, failed)
	if err != nil {
		return fmt.Errorf("bulk index %s retry: %w", k, err)
	}
	if len(failed) > 0 {
		metrics.BulkFailuresTotal.WithLabelValues(index).Inc()
		return fmt.Errorf("%w: %s rejected %d documents", domain.ErrBulkIndexFailed, k, len(failed))
	}
	metrics.DocumentsIndexedTotal.WithLabelValues(index).Add(float64(len(chunk)))
	return nil
}

// UpdateBoth applies a scripted update body to both kind indexes,
// prospect index first. Both documents of an entity carry the same id
// fields, so one body keyed on an id field reaches the entity in each
// index.
func (r *Repo) UpdateBoth(ctx context.Context, body map[string]any) error {
	for _, k := range []kind.Kind{kind.Prospect, kind.Property} {
		if err := r.store.UpdateByQuery(ctx, k.Index(r.prefix), body); err != nil {
			return fmt.Errorf("update %s: %w", k, err)
		}
		metrics.UpdateByQueryTotal.WithLabelValues(k.Index(r.prefix)).Inc()
	}
	return nil
}
