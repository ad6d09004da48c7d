package elastic

import "github.com/elastic/go-elasticsearch/v8"

// NewStoreForTest wraps a preconfigured client, letting tests point the
// store at a stub transport.
func NewStoreForTest(es *elasticsearch.Client) *Store {
	return &Store{es: es}
}
