// Package generative answers free-text queries through a language model.
//
// The Delegate never fails outward: transport errors, timeouts and
// unparseable model output all degrade to an insight-kind result with a fixed
// error message and an empty selection.
package generative

import (
	"context"
	"errors"
	"time"

	"github.com/anrid/japan-population/pkg/stats"
	"go.uber.org/zap"
)

const DefaultTimeout = 15 * time.Second

const (
	ErrorTitle       = "AI分析エラー"
	ErrorDescription = "AI分析サーバーとの通信に失敗しました。"

	OversizedTitle       = "入力が大きすぎます"
	OversizedDescription = "質問またはデータが大きすぎるため分析できません。質問を短くしてください。"
)

type Delegate struct {
	backend Backend
	timeout time.Duration
	log     *zap.Logger
}

type Option func(*Delegate)

func WithTimeout(d time.Duration) Option {
	return func(g *Delegate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(g *Delegate) { g.log = log }
}

func NewDelegate(backend Backend, opts ...Option) *Delegate {
	g := &Delegate{
		backend: backend,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Analyze asks the backend to pick prefectures for query. An empty selection
// is a valid answer, not a failure.
func (g *Delegate) Analyze(ctx context.Context, query string, data stats.Dataset) stats.AnalysisResult {
	req := Request{Query: query, DataContext: Snapshot(data)}

	if Oversized(req.Query, req.DataContext) {
		g.log.Warn("Generative request rejected by size guard",
			zap.Int("query_chars", len([]rune(req.Query))),
			zap.Int("context_chars", len([]rune(req.DataContext))))
		return oversizedResult()
	}

	text, err := g.generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrOversizedInput) {
			return oversizedResult()
		}
		g.log.Error("Generative analysis failed", zap.String("query", query), zap.Error(err))
		return errorResult()
	}

	resp, err := ParseResponse(text)
	if err != nil {
		g.log.Error("Generative response not parseable", zap.String("query", query), zap.Error(err))
		return errorResult()
	}

	g.log.Debug("Generative analysis complete",
		zap.String("query", query),
		zap.Ints("selected", resp.SelectedPrefectures))

	return stats.AnalysisResult{
		Kind:          stats.KindSelection,
		SelectedCodes: resp.SelectedPrefectures,
		Title:         resp.Title,
		Description:   resp.Description,
		Insights:      resp.Insights,
	}
}

func (g *Delegate) generate(ctx context.Context, req Request) (string, error) {
	if g.backend == nil {
		return "", errors.New("no generative backend configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.backend.Generate(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", ErrUpstreamTimeout
	}
	return text, err
}

func errorResult() stats.AnalysisResult {
	return stats.AnalysisResult{
		Kind:          stats.KindInsight,
		SelectedCodes: []int{},
		Title:         ErrorTitle,
		Description:   ErrorDescription,
		Insights:      []stats.DataInsight{},
	}
}

func oversizedResult() stats.AnalysisResult {
	return stats.AnalysisResult{
		Kind:          stats.KindInsight,
		SelectedCodes: []int{},
		Title:         OversizedTitle,
		Description:   OversizedDescription,
		Insights:      []stats.DataInsight{},
	}
}
