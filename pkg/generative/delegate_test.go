package generative

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anrid/japan-population/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendFunc func(ctx context.Context, req Request) (string, error)

func (f backendFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func fixture() stats.Dataset {
	return stats.Dataset{Prefectures: stats.DefaultPrefectures(), Records: map[int]*stats.Record{}}
}

func TestAnalyzeSelection(t *testing.T) {
	var got Request
	d := NewDelegate(backendFunc(func(ctx context.Context, req Request) (string, error) {
		got = req
		return "Here is the result:\n{\"selectedPrefectures\":[13,\"27\",13],\"title\":\"T\"}", nil
	}))

	res := d.Analyze(context.Background(), "東京と大阪を比較したい", fixture())

	assert.Equal(t, stats.KindSelection, res.Kind)
	assert.ElementsMatch(t, []int{13, 27}, res.SelectedCodes)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "", res.Description)
	assert.Empty(t, res.Insights)

	assert.Equal(t, "東京と大阪を比較したい", got.Query)
	assert.Equal(t, 47, strings.Count(got.DataContext, "\n")+1)
}

func TestAnalyzeEmptySelectionIsNotAnError(t *testing.T) {
	d := NewDelegate(backendFunc(func(ctx context.Context, req Request) (string, error) {
		return `{"selectedPrefectures":[],"title":"該当なし","description":"条件に合う県はありません"}`, nil
	}))

	res := d.Analyze(context.Background(), "人口が1億人を超える県", fixture())
	assert.Equal(t, stats.KindSelection, res.Kind)
	assert.Empty(t, res.SelectedCodes)
	assert.Equal(t, "該当なし", res.Title)
}

func TestAnalyzeUnparseable(t *testing.T) {
	d := NewDelegate(backendFunc(func(ctx context.Context, req Request) (string, error) {
		return "I am not sure what you mean.", nil
	}))

	res := d.Analyze(context.Background(), "?", fixture())
	assert.Equal(t, stats.KindInsight, res.Kind)
	assert.NotNil(t, res.SelectedCodes)
	assert.Empty(t, res.SelectedCodes)
	assert.Equal(t, ErrorTitle, res.Title)
}

func TestAnalyzeBackendFailure(t *testing.T) {
	d := NewDelegate(backendFunc(func(ctx context.Context, req Request) (string, error) {
		return "", errors.New("connection refused")
	}))

	res := d.Analyze(context.Background(), "人口が多い県5つ", fixture())
	assert.Equal(t, stats.KindInsight, res.Kind)
	assert.Equal(t, ErrorTitle, res.Title)
	assert.Equal(t, ErrorDescription, res.Description)
}

func TestAnalyzeTimeout(t *testing.T) {
	d := NewDelegate(backendFunc(func(ctx context.Context, req Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), WithTimeout(10*time.Millisecond))

	start := time.Now()
	res := d.Analyze(context.Background(), "人口が多い県5つ", fixture())

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, stats.KindInsight, res.Kind)
	assert.Equal(t, ErrorTitle, res.Title)

	_, err := d.generate(context.Background(), Request{Query: "q"})
	assert.True(t, errors.Is(err, ErrUpstreamTimeout))
}

func TestAnalyzeOversizedSkipsBackend(t *testing.T) {
	called := false
	d := NewDelegate(backendFunc(func(ctx context.Context, req Request) (string, error) {
		called = true
		return `{}`, nil
	}))

	res := d.Analyze(context.Background(), strings.Repeat("人", MaxInputSize/2), fixture())

	assert.False(t, called)
	assert.Equal(t, stats.KindInsight, res.Kind)
	assert.Equal(t, OversizedTitle, res.Title)
	assert.Empty(t, res.SelectedCodes)
}

func TestAnalyzeWithoutBackend(t *testing.T) {
	res := NewDelegate(nil).Analyze(context.Background(), "q", fixture())
	assert.Equal(t, ErrorTitle, res.Title)
}

func TestHTTPBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"selectedPrefectures":[25,26],"title":"関西","description":"","insights":[]}`))
		case "/big":
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	text, err := NewHTTPBackend(srv.URL+"/ok").Generate(context.Background(), Request{Query: "関西"})
	require.NoError(t, err)
	r, err := ParseResponse(text)
	require.NoError(t, err)
	assert.Equal(t, []int{25, 26}, r.SelectedPrefectures)

	_, err = NewHTTPBackend(srv.URL+"/big").Generate(context.Background(), Request{Query: "関西"})
	assert.True(t, errors.Is(err, ErrOversizedInput))

	_, err = NewHTTPBackend(srv.URL+"/bad").Generate(context.Background(), Request{Query: "関西"})
	assert.ErrorContains(t, err, "502")
}

func TestAnalyzeOversizedFromServer(t *testing.T) {
	d := NewDelegate(backendFunc(func(ctx context.Context, req Request) (string, error) {
		return "", ErrOversizedInput
	}))
	res := d.Analyze(context.Background(), "q", fixture())
	assert.Equal(t, OversizedTitle, res.Title)
}
