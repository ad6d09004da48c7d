package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/parcelworks/stacker/internal/db"
)

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error"`
	} `json:"items"`
}

// BulkIndex writes the documents into the index with one bulk request.
// Each document is indexed under its own id, so re-running the same batch
// overwrites rather than duplicates. Rejected documents come back in
// failed; a non-nil error means the request itself did not go through.
func (s *Store) BulkIndex(ctx context.Context, index string, docs []db.BulkDoc) ([]db.BulkDoc, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		action := map[string]any{
			"index": map[string]any{"_id": doc.ID},
		}
		if err := enc.Encode(action); err != nil {
			return nil, &db.Error{Op: db.OpBulk, Err: err}
		}
		if err := enc.Encode(doc.Source); err != nil {
			return nil, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("encode doc %s: %w", doc.ID, err)}
		}
	}

	res, err := s.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.es.Bulk.WithIndex(index),
		s.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &db.Error{Op: db.OpBulk, Err: statusErr(res)}
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}
	if !parsed.Errors {
		return nil, nil
	}

	// Item order matches request order.
	var failed []db.BulkDoc
	for i, item := range parsed.Items {
		if i >= len(docs) {
			break
		}
		for _, detail := range item {
			if detail.Status >= 300 {
				failed = append(failed, docs[i])
			}
		}
	}
	return failed, nil
}
