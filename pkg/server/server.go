// Package server is the credential-holding HTTP layer between browsers and
// the upstream population API and language model.
package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/anrid/japan-population/pkg/generative"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Upstream passes requests through to the population API.
type Upstream interface {
	Raw(ctx context.Context, path string, q url.Values) (int, []byte, error)
}

type Options struct {
	Upstream      Upstream
	Backend       generative.Backend
	Timeout       time.Duration
	AllowOrigins  []string
	RatePerSecond float64
	Burst         int
	Log           *zap.Logger
}

type Server struct {
	upstream Upstream
	backend  generative.Backend
	timeout  time.Duration
	limiter  *rate.Limiter
	log      *zap.Logger

	engine *gin.Engine
}

func New(o Options) *Server {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Timeout <= 0 {
		o.Timeout = generative.DefaultTimeout
	}

	limit := rate.Inf
	if o.RatePerSecond > 0 {
		limit = rate.Limit(o.RatePerSecond)
	}
	burst := o.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		upstream: o.Upstream,
		backend:  o.Backend,
		timeout:  o.Timeout,
		limiter:  rate.NewLimiter(limit, burst),
		log:      o.Log,
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestID(), accessLog(o.Log), cors(o.AllowOrigins))

	api := r.Group("/api")
	api.GET("/prefectures", s.handlePrefectures)
	api.GET("/population", s.handlePopulation)
	api.POST("/analyze", s.handleAnalyze)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("AI分析サーバーが起動しました", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
