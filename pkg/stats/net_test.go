package stats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/prefectures", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"message":null,"result":[{"prefCode":1,"prefName":"北海道"},{"prefCode":13,"prefName":"東京都"}]}`))
	})
	mux.HandleFunc("/population/composition/perYear", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-", r.URL.Query().Get("cityCode"))
		switch r.URL.Query().Get("prefCode") {
		case "13":
			w.Write([]byte(`{"message":null,"result":` + tokyoJSON + `}`))
		case "99":
			w.Write([]byte(`{"message":null,"result":null}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientPrefectures(t *testing.T) {
	srv := newUpstream(t)

	prefs, err := NewClient(srv.URL, "secret", nil).Prefectures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Prefecture{{1, "北海道"}, {13, "東京都"}}, prefs)

	_, err = NewClient(srv.URL, "wrong", nil).Prefectures(context.Background())
	assert.ErrorContains(t, err, "403")
}

func TestClientPopulation(t *testing.T) {
	c := NewClient(newUpstream(t).URL+"/", "secret", nil)

	rec, err := c.Population(context.Background(), 13)
	require.NoError(t, err)
	v, ok := rec.Value(TotalPopulation, 2025)
	assert.True(t, ok)
	assert.Equal(t, 14000000.0, v)

	_, err = c.Population(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.Population(context.Background(), 5)
	assert.ErrorContains(t, err, "500")
}

func TestClientRaw(t *testing.T) {
	c := NewClient(newUpstream(t).URL, "wrong", nil)

	status, body, err := c.Raw(context.Background(), "/prefectures", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Empty(t, body)
}
