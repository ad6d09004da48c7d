package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/kind"
)

func makeDocs(n int) []db.BulkDoc {
	docs := make([]db.BulkDoc, n)
	for i := range docs {
		docs[i] = db.BulkDoc{ID: strconv.Itoa(i + 1), Source: map[string]any{"prospect_id": int64(i + 1)}}
	}
	return docs
}

func TestIndexAllChunks(t *testing.T) {
	var sizes []int
	var indexes []string
	s := &mockStore{
		bulkIndexFn: func(ctx context.Context, index string, docs []db.BulkDoc) ([]db.BulkDoc, error) {
			sizes = append(sizes, len(docs))
			indexes = append(indexes, index)
			return nil, nil
		},
	}

	r := New(s, "")
	if err := r.IndexAll(context.Background(), kind.Prospect, makeDocs(12001)); err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}

	if len(sizes) != 3 || sizes[0] != 5000 || sizes[1] != 5000 || sizes[2] != 2001 {
		t.Errorf("chunk sizes = %v, want [5000 5000 2001]", sizes)
	}
	for _, index := range indexes {
		if index != "stacker-prospect" {
			t.Errorf("index = %q, want stacker-prospect", index)
		}
	}
}

func TestIndexAllEmpty(t *testing.T) {
	s := &mockStore{
		bulkIndexFn: func(ctx context.Context, index string, docs []db.BulkDoc) ([]db.BulkDoc, error) {
			t.Error("bulk call made for empty load")
			return nil, nil
		},
	}

	r := New(s, "")
	if err := r.IndexAll(context.Background(), kind.Property, nil); err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
}

func TestIndexAllRetriesRejected(t *testing.T) {
	docs := makeDocs(3)
	var calls [][]db.BulkDoc
	s := &mockStore{
		bulkIndexFn: func(ctx context.Context, index string, batch []db.BulkDoc) ([]db.BulkDoc, error) {
			calls = append(calls, batch)
			if len(calls) == 1 {
				return []db.BulkDoc{docs[1]}, nil
			}
			return nil, nil
		},
	}

	r := New(s, "")
	if err := r.IndexAll(context.Background(), kind.Prospect, docs); err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("bulk calls = %d, want 2", len(calls))
	}
	if len(calls[1]) != 1 || calls[1][0].ID != "2" {
		t.Errorf("retry batch = %v, want the rejected document", calls[1])
	}
}

func TestIndexAllRejectedTwice(t *testing.T) {
	docs := makeDocs(2)
	s := &mockStore{
		bulkIndexFn: func(ctx context.Context, index string, batch []db.BulkDoc) ([]db.BulkDoc, error) {
			return batch[:1], nil
		},
	}

	r := New(s, "")
	err := r.IndexAll(context.Background(), kind.Property, docs)
	if !errors.Is(err, domain.ErrBulkIndexFailed) {
		t.Errorf("error = %v, want ErrBulkIndexFailed", err)
	}
}

func TestIndexAllRequestError(t *testing.T) {
	s := &mockStore{
		bulkIndexFn: func(ctx context.Context, index string, batch []db.BulkDoc) ([]db.BulkDoc, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	r := New(s, "")
	if err := r.IndexAll(context.Background(), kind.Property, makeDocs(1)); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpdateBoth(t *testing.T) {
	var indexes []string
	s := &mockStore{
		updateByQueryFn: func(ctx context.Context, index string, body map[string]any) error {
			indexes = append(indexes, index)
			return nil
		},
	}

	r := New(s, "qa")
	body := map[string]any{"script": map[string]any{"source": "ctx._source.is_archived = true;"}}
	if err := r.UpdateBoth(context.Background(), body); err != nil {
		t.Fatalf("UpdateBoth() error = %v", err)
	}

	if len(indexes) != 2 || indexes[0] != "qa-stacker-prospect" || indexes[1] != "qa-stacker-property" {
		t.Errorf("indexes = %v, want both prefixed indexes prospect-first", indexes)
	}
}

func TestUpdateBothStopsOnError(t *testing.T) {
	var calls int
	s := &mockStore{
		updateByQueryFn: func(ctx context.Context, index string, body map[string]any) error {
			calls++
			return fmt.Errorf("shard failure")
		},
	}

	r := New(s, "")
	if err := r.UpdateBoth(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("update calls = %d, want 1", calls)
	}
}
