package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parcelworks/stacker/internal/db"
)

const createIndexTimeout = 30 * time.Second

// CreateIndex creates the index with the given settings and mappings.
// Creating an index that already exists returns db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, index string, definition map[string]any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(definition); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	res, err := s.es.Indices.Create(
		index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(&buf),
		s.es.Indices.Create.WithTimeout(createIndexTimeout),
	)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, readErr := io.ReadAll(res.Body)
		if readErr != nil {
			return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%s: read response: %w", res.Status(), readErr)}
		}
		if res.StatusCode == http.StatusBadRequest && errorType(raw) == "resource_already_exists_exception" {
			return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
		}
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%s: %s", res.Status(), raw)}
	}
	return nil
}

// DeleteIndex removes the index. Deleting an index that does not exist
// returns db.ErrIndexNotFound.
func (s *Store) DeleteIndex(ctx context.Context, index string) error {
	res, err := s.es.Indices.Delete(
		[]string{index},
		s.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return &db.Error{Op: db.OpDeleteIndex, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return &db.Error{Op: db.OpDeleteIndex, Err: db.ErrIndexNotFound}
		}
		return &db.Error{Op: db.OpDeleteIndex, Err: statusErr(res)}
	}
	return nil
}

// IndexExists reports whether the index exists.
func (s *Store) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := s.es.Indices.Exists(
		[]string{index},
		s.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexExists, Err: statusErr(res)}
	}
}

// errorType digs the engine's error type out of an error response body.
func errorType(raw []byte) string {
	var parsed struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Type
}
