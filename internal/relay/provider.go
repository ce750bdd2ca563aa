// Package relay implements the HTTP translation relay used by the clients.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"parrot/internal/config"
)

// Request is one translation asked of a provider. From is empty when the
// source language should be detected.
type Request struct {
	Text string
	From string
	To   string
}

// Result is the relay response body on success.
type Result struct {
	Text     string `json:"result"`
	Detected string `json:"detected"`
}

// Provider translates text through an upstream service.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req Request) (Result, error)
}

var errEmptyTranslation = errors.New("provider returned no translation")

// NewProvider builds the configured provider, wrapped in the response cache
// when caching is enabled.
func NewProvider(cfg config.RelayConfig, metrics *Metrics, log *zap.Logger) (Provider, error) {
	var provider Provider
	switch cfg.Provider {
	case "google":
		provider = NewGoogleProvider(cfg.Google.BaseURL, &http.Client{Timeout: cfg.ProviderTimeout})
	case "openai":
		provider = NewOpenAIProvider(cfg.OpenAI, cfg.ProviderTimeout)
	case "stub":
		provider = NewStubProvider()
	default:
		return nil, fmt.Errorf("unknown translation provider %q", cfg.Provider)
	}

	if cfg.Cache.Size > 0 {
		provider = NewCachedProvider(provider, cfg.Cache.Size, cfg.Cache.TTL, metrics)
	}
	log.Info("translation provider ready",
		zap.String("provider", provider.Name()),
		zap.Int("cache_size", cfg.Cache.Size),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)
	return provider, nil
}
