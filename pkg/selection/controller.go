// Package selection owns the session state a presentation layer renders:
// the catalog, the selected prefectures, the latest analysis and the errors
// collected along the way.
package selection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/anrid/japan-population/pkg/stats"
	"github.com/anrid/japan-population/pkg/store"
	"go.uber.org/zap"
)

// ErrNotReady is returned when a query arrives before the catalog loaded.
var ErrNotReady = errors.New("都道府県データが読み込まれていません")

// Processor answers a query against a dataset.
type Processor interface {
	Process(ctx context.Context, query string, data stats.Dataset) stats.AnalysisResult
}

type Controller struct {
	catalog   stats.Catalog
	store     *store.Store
	processor Processor
	log       *zap.Logger

	analyzing atomic.Bool

	mu          sync.RWMutex
	prefectures []stats.Prefecture
	selected    map[int]struct{}
	latest      *stats.AnalysisResult
	errs        []error
}

func New(catalog stats.Catalog, st *store.Store, processor Processor, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		catalog:   catalog,
		store:     st,
		processor: processor,
		log:       log,
		selected:  make(map[int]struct{}),
	}
}

// LoadCatalog fetches the prefecture list. Nothing else works until it
// succeeds; it may be called again after a failure.
func (c *Controller) LoadCatalog(ctx context.Context) error {
	prefs, err := c.catalog.Prefectures(ctx)
	if err == nil && len(prefs) == 0 {
		err = errors.New("empty prefecture list")
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", stats.ErrCatalogUnavailable, err)
		c.recordError(err)
		return err
	}

	c.mu.Lock()
	c.prefectures = prefs
	c.mu.Unlock()

	c.log.Info("Loaded prefecture catalog", zap.Int("prefectures", len(prefs)))
	return nil
}

// Process runs query end to end: warm the cache, analyze, apply the result.
// Per-prefecture fetch failures are recorded and do not abort the query.
func (c *Controller) Process(ctx context.Context, query string) (stats.AnalysisResult, error) {
	prefs := c.Prefectures()
	if len(prefs) == 0 {
		c.recordError(ErrNotReady)
		return stats.AnalysisResult{}, ErrNotReady
	}

	c.analyzing.Store(true)
	defer c.analyzing.Store(false)

	all := make([]int, 0, len(prefs))
	for _, p := range prefs {
		all = append(all, p.Code)
	}
	if missing := c.store.Missing(all); len(missing) > 0 {
		c.log.Info("Warming population cache before analysis", zap.Int("missing", len(missing)))
		c.recordFailures(c.store.FetchMany(ctx, missing))
	}

	res := c.processor.Process(ctx, query, stats.Dataset{
		Prefectures: prefs,
		Records:     c.store.Snapshot(),
	})
	res.SelectedCodes = stats.NormalizeCodes(res.SelectedCodes)

	if len(res.SelectedCodes) > 0 {
		c.recordFailures(c.store.FetchMany(ctx, res.SelectedCodes))

		c.mu.Lock()
		c.selected = make(map[int]struct{}, len(res.SelectedCodes))
		for _, code := range res.SelectedCodes {
			c.selected[code] = struct{}{}
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	latest := res
	c.latest = &latest
	c.mu.Unlock()

	c.log.Info("Query analyzed",
		zap.String("query", query),
		zap.String("kind", string(res.Kind)),
		zap.Ints("selected", res.SelectedCodes))

	return res, nil
}

// Toggle flips code in the selection, fetching its record when it is
// selected.
func (c *Controller) Toggle(ctx context.Context, code int) error {
	if !stats.ValidCode(code) {
		return fmt.Errorf("invalid prefecture code %d", code)
	}

	c.mu.Lock()
	_, on := c.selected[code]
	if on {
		delete(c.selected, code)
	} else {
		c.selected[code] = struct{}{}
	}
	c.mu.Unlock()

	if on {
		return nil
	}
	if _, err := c.store.FetchOne(ctx, code); err != nil {
		c.recordError(err)
		return err
	}
	return nil
}

func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[int]struct{})
}

// Selected returns the selected codes, ascending.
func (c *Controller) Selected() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int, 0, len(c.selected))
	for code := range c.selected {
		out = append(out, code)
	}
	sort.Ints(out)
	return out
}

func (c *Controller) Prefectures() []stats.Prefecture {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]stats.Prefecture(nil), c.prefectures...)
}

func (c *Controller) CachedRecords() map[int]*stats.Record {
	return c.store.Snapshot()
}

func (c *Controller) Loading() []int {
	return c.store.Pending()
}

func (c *Controller) IsAnalyzing() bool {
	return c.analyzing.Load()
}

// Latest returns the most recent analysis, or nil before the first query.
func (c *Controller) Latest() *stats.AnalysisResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return nil
	}
	res := *c.latest
	return &res
}

// LastError returns the most recently recorded error message, or "".
func (c *Controller) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.errs) == 0 {
		return ""
	}
	return c.errs[len(c.errs)-1].Error()
}

// Errors returns every error recorded this session, oldest first.
func (c *Controller) Errors() []error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]error(nil), c.errs...)
}

func (c *Controller) recordFailures(b store.Batch) {
	for _, f := range b.Failures {
		c.recordError(f)
	}
}

func (c *Controller) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}
