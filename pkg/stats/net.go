package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public population API the proxy fronts.
const DefaultBaseURL = "https://yumemi-frontend-engineer-codecheck-api.vercel.app/api/v1"

// Catalog lists prefectures.
type Catalog interface {
	Prefectures(ctx context.Context) ([]Prefecture, error)
}

// Fetcher loads one prefecture's population record.
type Fetcher interface {
	Population(ctx context.Context, code int) (*Record, error)
}

// Provider is a complete upstream data source.
type Provider interface {
	Catalog
	Fetcher
}

// Client talks to the upstream population REST API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    http.DefaultClient,
		Log:     log,
	}
}

func (c *Client) Prefectures(ctx context.Context) ([]Prefecture, error) {
	var body struct {
		Result []Prefecture `json:"result"`
	}
	if err := c.get(ctx, "/prefectures", nil, &body); err != nil {
		return nil, err
	}
	return body.Result, nil
}

func (c *Client) Population(ctx context.Context, code int) (*Record, error) {
	q := url.Values{}
	q.Set("cityCode", "-")
	q.Set("prefCode", strconv.Itoa(code))

	var body struct {
		Result *Record `json:"result"`
	}
	if err := c.get(ctx, "/population/composition/perYear", q, &body); err != nil {
		return nil, err
	}
	if body.Result == nil {
		return nil, fmt.Errorf("prefecture %d: %w", code, ErrNotFound)
	}
	return body.Result, nil
}

// Raw performs a GET and returns the upstream status and body untouched.
// The proxy uses it to pass responses through.
func (c *Client) Raw(ctx context.Context, path string, q url.Values) (int, []byte, error) {
	resp, err := c.do(ctx, path, q)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	resp, err := c.do(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: API error: %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	c.Log.Debug("Download", zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-KEY", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return resp, nil
}
