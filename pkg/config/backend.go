package config

import (
	"context"
	"fmt"

	"github.com/anrid/japan-population/pkg/generative"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewBackend builds the generative backend selected by Generative.Provider.
func (c *Config) NewBackend(ctx context.Context) (generative.Backend, error) {
	g := c.Generative
	switch g.Provider {
	case ProviderGenAI:
		b, err := generative.NewGenAIBackend(ctx, g.APIKey, g.Model)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ProviderOpenAI:
		b, err := generative.NewOpenAIBackend(g.APIKey, g.BaseURL, g.Model)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ProviderHTTP:
		return generative.NewHTTPBackend(g.Endpoint), nil
	}
	return nil, fmt.Errorf("unknown generative provider %q", g.Provider)
}

// NewLogger returns a production logger, at debug level when verbose.
func NewLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
