package elastic

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/parcelworks/stacker/internal/db"
)

// UpdateByQuery applies the body's script to every document matched by
// its query. Refresh is forced so readers observe the change as soon as
// the call returns, and version conflicts are skipped rather than
// failing the whole batch.
func (s *Store) UpdateByQuery(ctx context.Context, index string, body map[string]any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return &db.Error{Op: db.OpUpdateByQuery, Err: err}
	}

	res, err := s.es.UpdateByQuery(
		[]string{index},
		s.es.UpdateByQuery.WithContext(ctx),
		s.es.UpdateByQuery.WithBody(&buf),
		s.es.UpdateByQuery.WithRefresh(true),
		s.es.UpdateByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return &db.Error{Op: db.OpUpdateByQuery, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return &db.Error{Op: db.OpUpdateByQuery, Err: statusErr(res)}
	}
	return nil
}
