// Package store caches population records for the lifetime of a session.
//
// A record is fetched from the upstream at most once per prefecture: cached
// records are served without network access, and concurrent requests for a
// code that is already being fetched wait for that fetch instead of issuing
// their own. Records are never evicted; a failed fetch leaves the cache
// untouched so the code can be requested again later.
package store

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/anrid/japan-population/pkg/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultBatchWidth bounds concurrent upstream requests during FetchMany.
const DefaultBatchWidth = 8

type Store struct {
	fetcher stats.Fetcher
	log     *zap.Logger
	width   int

	mu      sync.RWMutex
	records map[int]*stats.Record
	pending map[int]struct{}

	flight singleflight.Group
}

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithBatchWidth overrides the number of in-flight requests FetchMany allows.
func WithBatchWidth(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.width = n
		}
	}
}

func New(fetcher stats.Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		log:     zap.NewNop(),
		width:   DefaultBatchWidth,
		records: make(map[int]*stats.Record),
		pending: make(map[int]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Get(code int) (*stats.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[code]
	return rec, ok
}

func (s *Store) Has(code int) bool {
	_, ok := s.Get(code)
	return ok
}

// Put inserts rec unless code is already cached. It reports whether the
// record was inserted.
func (s *Store) Put(code int, rec *stats.Record) bool {
	if rec == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[code]; ok {
		return false
	}
	s.records[code] = rec
	cachedRecords.Set(float64(len(s.records)))
	return true
}

// Snapshot returns a copy of the cache map. Records are shared, not copied;
// they are never mutated after insertion.
func (s *Store) Snapshot() map[int]*stats.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]*stats.Record, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Missing returns the codes among codes that are not cached, deduplicated
// and in input order.
func (s *Store) Missing(codes []int) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []int
	seen := make(map[int]bool)
	for _, c := range codes {
		if seen[c] {
			continue
		}
		seen[c] = true
		if _, ok := s.records[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Pending returns the codes with a fetch currently in flight, ascending.
func (s *Store) Pending() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.pending))
	for c := range s.pending {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// FetchOne returns the record for code, fetching it if needed. Concurrent
// callers for the same code share one upstream request and its outcome.
// A failure is returned as *stats.FetchFailure.
func (s *Store) FetchOne(ctx context.Context, code int) (*stats.Record, error) {
	if rec, ok := s.Get(code); ok {
		cacheHits.Inc()
		return rec, nil
	}

	v, err, _ := s.flight.Do(strconv.Itoa(code), func() (interface{}, error) {
		// Another flight may have completed between the lookup above and
		// this one starting.
		if rec, ok := s.Get(code); ok {
			return rec, nil
		}
		return s.fetch(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	return v.(*stats.Record), nil
}

func (s *Store) fetch(ctx context.Context, code int) (*stats.Record, error) {
	s.setPending(code, true)
	defer s.setPending(code, false)

	s.log.Debug("Fetching population", zap.Int("code", code))

	rec, err := s.fetcher.Population(ctx, code)
	if err == nil && rec == nil {
		err = stats.ErrNotFound
	}
	if err != nil {
		upstreamFetches.WithLabelValues("failure").Inc()
		s.log.Warn("Population fetch failed", zap.Int("code", code), zap.Error(err))
		return nil, &stats.FetchFailure{Code: code, Cause: err}
	}

	upstreamFetches.WithLabelValues("success").Inc()
	s.Put(code, rec)

	// Put never overwrites, so return whatever the cache holds.
	cached, _ := s.Get(code)
	return cached, nil
}

func (s *Store) setPending(code int, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.pending[code] = struct{}{}
	} else {
		delete(s.pending, code)
	}
	inflight.Set(float64(len(s.pending)))
}
