package store

import (
	"context"
	"sort"
	"sync"

	"github.com/anrid/japan-population/pkg/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Batch is the outcome of FetchMany.
type Batch struct {
	// Records holds every requested code that is now cached, whether it was
	// already cached or fetched by this batch.
	Records map[int]*stats.Record
	// Failures lists one entry per code whose fetch failed, ordered by code.
	Failures []*stats.FetchFailure
}

// Err returns the most recent failure in the batch, or nil.
func (b Batch) Err() error {
	if len(b.Failures) == 0 {
		return nil
	}
	return b.Failures[len(b.Failures)-1]
}

// FetchMany returns records for codes, fetching the missing ones with at most
// the store's batch width in flight. A failing code never affects the others.
func (s *Store) FetchMany(ctx context.Context, codes []int) Batch {
	out := Batch{Records: make(map[int]*stats.Record, len(codes))}

	var missing []int
	seen := make(map[int]bool, len(codes))
	for _, c := range codes {
		if seen[c] {
			continue
		}
		seen[c] = true
		if rec, ok := s.Get(c); ok {
			out.Records[c] = rec
			continue
		}
		missing = append(missing, c)
	}
	if len(missing) == 0 {
		return out
	}

	s.log.Debug("Warming population cache",
		zap.Int("requested", len(seen)),
		zap.Int("missing", len(missing)),
		zap.Int("width", s.width))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.width)

	for _, code := range missing {
		code := code
		g.Go(func() error {
			rec, err := s.FetchOne(ctx, code)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failures = append(out.Failures, asFailure(code, err))
				return nil
			}
			out.Records[code] = rec
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(out.Failures, func(i, j int) bool {
		return out.Failures[i].Code < out.Failures[j].Code
	})
	return out
}

func asFailure(code int, err error) *stats.FetchFailure {
	if f, ok := err.(*stats.FetchFailure); ok {
		return f
	}
	return &stats.FetchFailure{Code: code, Cause: err}
}
