// Package elastic implements the document store facade over Elasticsearch.
package elastic

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/parcelworks/stacker/internal/db"
)

// Config holds Elasticsearch connection parameters.
type Config struct {
	Addresses []string
	Username  string
	Password  string
}

// Store implements db.DocumentStore over an Elasticsearch cluster.
type Store struct {
	es *elasticsearch.Client
}

// NewStore creates a Store from the config.
func NewStore(cfg Config) (*Store, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: create client: %w", err)
	}
	return &Store{es: es}, nil
}

// Ping checks cluster connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: statusErr(res)}
	}
	return nil
}

// Close releases idle connections. The underlying client keeps no other
// resources open.
func (s *Store) Close() {}

// WaitForReady blocks until the cluster responds to ping or the timeout
// expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("elastic: not ready after %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// statusErr turns a non-2xx response into an error carrying the status
// line and response body.
func statusErr(res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s: %s", res.Status(), body)
}
