// Package config loads settings from config.yaml with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anrid/japan-population/pkg/generative"
	"github.com/anrid/japan-population/pkg/stats"
	"github.com/anrid/japan-population/pkg/store"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is fatal for the proxy server.
var ErrMissingCredential = errors.New("credential not configured")

const (
	ProviderGenAI  = "genai"
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

type Config struct {
	Upstream   Upstream   `yaml:"upstream"`
	Generative Generative `yaml:"generative"`
	Server     Server     `yaml:"server"`
	Store      Store      `yaml:"store"`
}

type Upstream struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	APIKey  string `yaml:"api_key"`
}

type Generative struct {
	Provider string        `yaml:"provider" validate:"oneof=genai openai http"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
	Endpoint string        `yaml:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
}

type Server struct {
	Addr          string   `yaml:"addr" validate:"required"`
	AllowOrigins  []string `yaml:"allow_origins"`
	RatePerSecond float64  `yaml:"rate_per_second" validate:"gte=0"`
	Burst         int      `yaml:"burst" validate:"gte=0"`
}

type Store struct {
	BatchWidth int `yaml:"batch_width" validate:"gte=1,lte=47"`
}

func Default() *Config {
	return &Config{
		Upstream: Upstream{BaseURL: stats.DefaultBaseURL},
		Generative: Generative{
			Provider: ProviderHTTP,
			Endpoint: "http://localhost:3001/api/analyze",
			Timeout:  generative.DefaultTimeout,
		},
		Server: Server{
			Addr:          ":3001",
			AllowOrigins:  []string{"http://localhost:5173"},
			RatePerSecond: 2,
			Burst:         4,
		},
		Store: Store{BatchWidth: store.DefaultBatchWidth},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("POP_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := getenv("POP_API_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	switch c.Generative.Provider {
	case ProviderGenAI:
		if v := getenv("GOOGLE_AI_API_KEY"); v != "" {
			c.Generative.APIKey = v
		}
	case ProviderOpenAI:
		if v := getenv("OPENAI_API_KEY"); v != "" {
			c.Generative.APIKey = v
		}
	}
	if v := getenv("AI_ENDPOINT"); v != "" {
		c.Generative.Endpoint = v
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Generative.Provider == ProviderHTTP && c.Generative.Endpoint == "" {
		return fmt.Errorf("invalid config: generative.endpoint is required for the http provider")
	}
	return nil
}

// RequireServerCredentials checks the secrets the proxy needs. The proxy
// talks to a model directly, so it cannot use the http provider.
func (c *Config) RequireServerCredentials() error {
	var missing []string
	if c.Upstream.APIKey == "" {
		missing = append(missing, "POP_API_KEY")
	}
	switch c.Generative.Provider {
	case ProviderGenAI:
		if c.Generative.APIKey == "" {
			missing = append(missing, "GOOGLE_AI_API_KEY")
		}
	case ProviderOpenAI:
		if c.Generative.APIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("%w: generative.provider must be genai or openai for the server, got %q",
			ErrMissingCredential, c.Generative.Provider)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}
