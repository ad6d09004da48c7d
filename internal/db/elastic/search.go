package elastic

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/parcelworks/stacker/internal/db"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source map[string]any `json:"_source"`
			Sort   []any          `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]any `json:"aggregations"`
}

// Search runs the body against the index with total hit tracking always
// on. A negative size leaves the engine default in place.
func (s *Store) Search(ctx context.Context, index string, body map[string]any, size int) (*db.SearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	opts := []func(*esapi.SearchRequest){
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(&buf),
		s.es.Search.WithTrackTotalHits(true),
	}
	if size >= 0 {
		opts = append(opts, s.es.Search.WithSize(size))
	}

	res, err := s.es.Search(opts...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &db.Error{Op: db.OpSearch, Err: statusErr(res)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	result := &db.SearchResult{
		Hits:         make([]db.Hit, 0, len(parsed.Hits.Hits)),
		Total:        parsed.Hits.Total.Value,
		Aggregations: parsed.Aggregations,
	}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, db.Hit{Source: hit.Source, Sort: hit.Sort})
	}
	return result, nil
}

// Count counts the documents matching the body's query.
func (s *Store) Count(ctx context.Context, index string, body map[string]any) (int64, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}

	res, err := s.es.Count(
		s.es.Count.WithContext(ctx),
		s.es.Count.WithIndex(index),
		s.es.Count.WithBody(&buf),
	)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, &db.Error{Op: db.OpCount, Err: statusErr(res)}
	}

	var parsed struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return parsed.Count, nil
}
