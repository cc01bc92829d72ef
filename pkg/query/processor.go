// Package query routes a free-text question to the deterministic analyzer or
// the generative delegate.
//
// Any query naming a region is answered by the analyzer, even when a model
// might phrase a different answer; reproducibility wins over flexibility.
package query

import (
	"context"
	"strings"

	"github.com/anrid/japan-population/pkg/analyzer"
	"github.com/anrid/japan-population/pkg/stats"
	"go.uber.org/zap"
)

const DefaultRegionalLimit = 15

// Delegate answers queries the rule-based parser cannot resolve.
type Delegate interface {
	Analyze(ctx context.Context, query string, data stats.Dataset) stats.AnalysisResult
}

type Processor struct {
	delegate Delegate
	topics   bool
	log      *zap.Logger
}

type Option func(*Processor)

// WithTopicRouting answers population decline, aging and workforce questions
// with the analyzer's topic rankings instead of the delegate.
func WithTopicRouting() Option {
	return func(p *Processor) { p.topics = true }
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Processor) { p.log = log }
}

func NewProcessor(delegate Delegate, opts ...Option) *Processor {
	p := &Processor{delegate: delegate, log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process answers query against data.
func (p *Processor) Process(ctx context.Context, query string, data stats.Dataset) stats.AnalysisResult {
	intent := ParseIntent(query)

	if intent.Region != nil {
		category := stats.TotalPopulation
		if intent.Category != nil {
			category = *intent.Category
		}
		limit := intent.Limit
		if limit <= 0 {
			limit = DefaultRegionalLimit
		}
		order := intent.SortOrder
		if order == "" {
			order = stats.Descending
		}

		p.log.Debug("Deterministic regional query",
			zap.String("query", query),
			zap.String("region", intent.Region.Name()),
			zap.String("category", category.Label()),
			zap.Int("limit", limit),
			zap.String("order", string(order)))

		return analyzer.New(data).RegionalRanking(intent.Region.Name(), category, limit, order)
	}

	if p.topics {
		if res, ok := p.topic(query, intent, data); ok {
			return res
		}
	}

	p.log.Debug("Delegating query", zap.String("query", query))
	return p.delegate.Analyze(ctx, query, data)
}

func (p *Processor) topic(query string, intent stats.QueryIntent, data stats.Dataset) (stats.AnalysisResult, bool) {
	n := intent.Limit
	if n <= 0 {
		n = analyzer.DefaultTopN
	}
	a := analyzer.New(data)

	switch {
	case strings.Contains(query, "少子高齢化"):
		return a.AgingSociety(n), true
	case containsAny(query, "働く世代", "生産年齢", "労働力") && containsAny(query, "減少", "減る"):
		return a.WorkforceDecline(n), true
	case containsAny(query, "人口減少", "過疎", "人口が減"):
		return a.DecliningPopulations(n), true
	}
	return stats.AnalysisResult{}, false
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// SupportedQueries returns example queries users can start from.
func SupportedQueries() []string {
	return []string{
		"人口が多い県5つ",
		"関西地方を選択",
		"人口減少が激しい県を教えて",
		"少子高齢化が深刻な地域",
		"東京と大阪を比較したい",
		"九州で年少人口が少ない県3選",
		"働く世代が多い県トップ10",
		"関東で老年人口多いトップ5",
	}
}
