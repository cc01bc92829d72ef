package generative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrInvalidResponse means the model output held no parseable JSON object.
	ErrInvalidResponse = errors.New("invalid generative response")

	// ErrUpstreamTimeout means the backend did not answer before the deadline.
	ErrUpstreamTimeout = errors.New("generative backend timed out")

	// ErrOversizedInput means the request tripped the size guard.
	ErrOversizedInput = errors.New("input too large")
)

// Request is what a backend receives for one query.
type Request struct {
	Query       string `json:"query" binding:"required"`
	DataContext string `json:"dataContext"`
}

// Backend turns a request into raw model text that should contain a JSON
// object.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// HTTPBackend posts requests to a proxy's /api/analyze endpoint. The proxy
// holds the model credentials and builds the prompt server side.
type HTTPBackend struct {
	Endpoint string
	HTTP     *http.Client
}

func NewHTTPBackend(endpoint string) *HTTPBackend {
	return &HTTPBackend{Endpoint: endpoint, HTTP: http.DefaultClient}
}

func (b *HTTPBackend) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTP.Do(hreq)
	if err != nil {
		return "", fmt.Errorf("POST %s: %w", b.Endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", b.Endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return "", ErrOversizedInput
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("server error: %d", resp.StatusCode)
	}
	return string(data), nil
}
