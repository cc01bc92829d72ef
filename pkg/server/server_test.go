package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/anrid/japan-population/pkg/generative"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUpstream struct {
	path string
	q    url.Values
	err  error
}

func (f *fakeUpstream) Raw(ctx context.Context, path string, q url.Values) (int, []byte, error) {
	f.path, f.q = path, q
	if f.err != nil {
		return 0, nil, f.err
	}
	return http.StatusOK, []byte(`{"message":null,"result":[]}`), nil
}

type fakeBackend struct {
	calls int
	text  string
	err   error
}

func (f *fakeBackend) Generate(ctx context.Context, req generative.Request) (string, error) {
	f.calls++
	return f.text, f.err
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPrefecturesProxy(t *testing.T) {
	up := &fakeUpstream{}
	s := New(Options{Upstream: up, AllowOrigins: []string{"http://localhost:5173"}})

	w := do(t, s, http.MethodGet, "/api/prefectures", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":null,"result":[]}`, w.Body.String())
	assert.Equal(t, "/prefectures", up.path)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	up.err = errors.New("dial tcp: refused")
	w = do(t, s, http.MethodGet, "/api/prefectures", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPopulationProxy(t *testing.T) {
	up := &fakeUpstream{}
	s := New(Options{Upstream: up})

	w := do(t, s, http.MethodGet, "/api/population?prefCode=13", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/population/composition/perYear", up.path)
	assert.Equal(t, "13", up.q.Get("prefCode"))
	assert.Equal(t, "-", up.q.Get("cityCode"))

	for _, code := range []string{"", "0", "48", "tokyo"} {
		w = do(t, s, http.MethodGet, "/api/population?prefCode="+code, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, code)
	}
}

func TestAnalyze(t *testing.T) {
	b := &fakeBackend{text: "結果です:\n{\"selectedPrefectures\":[13,\"27\",99],\"title\":\"T\"}"}
	s := New(Options{Backend: b})

	w := do(t, s, http.MethodPost, "/api/analyze", `{"query":"東京と大阪","dataContext":"..."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp generative.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{13, 27}, resp.SelectedPrefectures)
	assert.Equal(t, "T", resp.Title)
	assert.Empty(t, resp.Insights)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		body    string
		status  int
		calls   int
	}{
		{"missing query", &fakeBackend{}, `{"dataContext":"x"}`, http.StatusBadRequest, 0},
		{"bad json", &fakeBackend{}, `{`, http.StatusBadRequest, 0},
		{"oversized", &fakeBackend{}, `{"query":"q","dataContext":"` + strings.Repeat("x", generative.MaxInputSize/2) + `"}`, http.StatusRequestEntityTooLarge, 0},
		{"backend failure", &fakeBackend{err: errors.New("quota")}, `{"query":"q"}`, http.StatusInternalServerError, 1},
		{"invalid output", &fakeBackend{text: "no json"}, `{"query":"q"}`, http.StatusBadGateway, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{Backend: tt.backend})
			w := do(t, s, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.calls, tt.backend.calls)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAnalyzeRateLimit(t *testing.T) {
	b := &fakeBackend{text: `{"selectedPrefectures":[]}`}
	s := New(Options{Backend: b, RatePerSecond: 0.001, Burst: 1})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/analyze", `{"query":"q"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s, http.MethodPost, "/api/analyze", `{"query":"q"}`).Code)
	assert.Equal(t, 1, b.calls)
}

func TestMethodNotAllowed(t *testing.T) {
	s := New(Options{Backend: &fakeBackend{}})
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodGet, "/api/analyze", "").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)

	w := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "population_server_http_requests_total")
}
