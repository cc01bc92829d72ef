package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/anrid/japan-population/pkg/generative"
	"github.com/anrid/japan-population/pkg/stats"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) handlePrefectures(c *gin.Context) {
	s.proxy(c, "/prefectures", nil)
}

func (s *Server) handlePopulation(c *gin.Context) {
	code, err := strconv.Atoi(c.Query("prefCode"))
	if err != nil || !stats.ValidCode(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prefCode must be an integer between 1 and 47"})
		return
	}

	q := url.Values{}
	q.Set("cityCode", "-")
	q.Set("prefCode", strconv.Itoa(code))
	s.proxy(c, "/population/composition/perYear", q)
}

func (s *Server) proxy(c *gin.Context, path string, q url.Values) {
	status, body, err := s.upstream.Raw(c.Request.Context(), path, q)
	if err != nil {
		s.log.Error("Upstream proxy error", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream error"})
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req generative.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query"})
		return
	}

	if generative.Oversized(req.Query, req.DataContext) {
		analyzeRequests.WithLabelValues("oversized").Inc()
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Input too large"})
		return
	}

	if !s.limiter.Allow() {
		analyzeRequests.WithLabelValues("rate_limited").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	text, err := s.backend.Generate(ctx, req)
	if err != nil {
		analyzeRequests.WithLabelValues("backend_error").Inc()
		s.log.Error("Analyze API error", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":               "AI analysis failed",
			"selectedPrefectures": []int{},
			"title":               generative.ErrorTitle,
			"description":         "AI分析中にエラーが発生しました。",
			"insights":            []stats.DataInsight{},
		})
		return
	}

	resp, err := generative.ParseResponse(text)
	if err != nil {
		analyzeRequests.WithLabelValues("invalid_response").Inc()
		s.log.Warn("Invalid AI response", zap.String("query", req.Query), zap.Int("bytes", len(text)))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Invalid AI response"})
		return
	}

	analyzeRequests.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, resp)
}
