// Package counts caches per-company document totals. Totals back the
// stacker header badges, so a short staleness window is fine and saves two
// count queries per page view.
package counts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
)

// DefaultTTL bounds how stale a cached total can get.
const DefaultTTL = 3 * time.Minute

// searcher is the consumer interface for index counts (ISP).
type searcher interface {
	Count(ctx context.Context, k kind.Kind, body map[string]any) (int64, error)
}

// store is the consumer interface over the key-value cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo serves totals through the cache.
type Repo struct {
	search     searcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a counts repository. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly; a non-positive ttl falls
// back to the default.
func New(search searcher, s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{
		search:     search,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// TotalsByCompany returns the company's document totals, serving from the
// cache when a fresh entry exists. body must be the compiled tenant query
// for the company.
func (r *Repo) TotalsByCompany(ctx context.Context, companyID int64, body map[string]any) (*domsearch.Totals, error) {
	key := cacheKey(companyID)

	if totals, ok := r.getFromCache(ctx, key); ok {
		r.incCache("hit")
		return totals, nil
	}
	r.incCache("miss")

	prospects, err := r.search.Count(ctx, kind.Prospect, body)
	if err != nil {
		return nil, err
	}
	properties, err := r.search.Count(ctx, kind.Property, body)
	if err != nil {
		return nil, err
	}

	totals := &domsearch.Totals{Prospects: prospects, Properties: properties}
	r.putToCache(ctx, key, totals)
	return totals, nil
}

func cacheKey(companyID int64) string {
	return fmt.Sprintf("stacker-counts-%d", companyID)
}

func (r *Repo) incCache(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (r *Repo) getFromCache(ctx context.Context, key string) (*domsearch.Totals, bool) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Failed to get cached totals", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var totals domsearch.Totals
	if err := json.Unmarshal(data, &totals); err != nil {
		r.logger.Warn("Failed to parse cached totals", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &totals, true
}

func (r *Repo) putToCache(ctx context.Context, key string, totals *domsearch.Totals) {
	data, err := json.Marshal(totals)
	if err != nil {
		return
	}
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Failed to cache totals", zap.String("key", key), zap.Error(err))
	}
}
