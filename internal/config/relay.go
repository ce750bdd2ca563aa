package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// RelayConfig stores configuration for the translation relay service.
type RelayConfig struct {
	Log             LogConfig     `yaml:"log"`
	Addr            string        `yaml:"addr"`
	Provider        string        `yaml:"provider"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	Google          GoogleConfig  `yaml:"google"`
	OpenAI          OpenAIConfig  `yaml:"openai"`
	Cache           CacheConfig   `yaml:"cache"`
	RateLimit       int           `yaml:"rate_limit_per_minute"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	StaticDir       string        `yaml:"static_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GoogleConfig struct {
	BaseURL string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// DefaultRelay returns the relay configuration before overrides.
func DefaultRelay() RelayConfig {
	return RelayConfig{
		Log:             LogConfig{Level: "info"},
		Addr:            ":5000",
		Provider:        "google",
		ProviderTimeout: 10 * time.Second,
		Google:          GoogleConfig{BaseURL: "https://translate.googleapis.com"},
		OpenAI:          OpenAIConfig{Model: "gpt-4o-mini"},
		Cache:           CacheConfig{Size: 512, TTL: 10 * time.Minute},
		RateLimit:       60,
		AllowedOrigins:  []string{"*"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadRelay resolves relay configuration from defaults, the YAML file named by
// RELAY_CONFIG and environment variables.
func LoadRelay() (RelayConfig, error) {
	cfg := DefaultRelay()

	path := strings.TrimSpace(os.Getenv("RELAY_CONFIG"))
	if err := readFile(path, true, &cfg); err != nil {
		return cfg, err
	}

	applyRelayEnvOverrides(&cfg)
	normalizeRelay(&cfg)
	if err := validateRelay(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyRelayEnvOverrides(cfg *RelayConfig) {
	overrideString(&cfg.Log.Level, "RELAY_LOG_LEVEL")
	overrideBool(&cfg.Log.Development, "RELAY_LOG_DEV")
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Addr = ":" + port
	}
	overrideString(&cfg.Addr, "RELAY_ADDR")
	overrideString(&cfg.Provider, "RELAY_PROVIDER")
	overrideMillis(&cfg.ProviderTimeout, "RELAY_PROVIDER_TIMEOUT_MS")
	overrideString(&cfg.Google.BaseURL, "RELAY_GOOGLE_BASE_URL")
	overrideString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	overrideString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	overrideString(&cfg.OpenAI.Model, "RELAY_OPENAI_MODEL")
	overrideInt(&cfg.Cache.Size, "RELAY_CACHE_SIZE")
	overrideMillis(&cfg.Cache.TTL, "RELAY_CACHE_TTL_MS")
	overrideInt(&cfg.RateLimit, "RELAY_RATE_LIMIT")
	overrideStringSlice(&cfg.AllowedOrigins, "RELAY_ALLOWED_ORIGINS")
	overrideString(&cfg.StaticDir, "RELAY_STATIC_DIR")
	overrideMillis(&cfg.ShutdownTimeout, "RELAY_SHUTDOWN_TIMEOUT_MS")
}

func normalizeRelay(cfg *RelayConfig) {
	defaults := DefaultRelay()
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaults.ProviderTimeout
	}
	if cfg.Cache.TTL < 0 {
		cfg.Cache.TTL = 0
	}
	if cfg.RateLimit < 0 {
		cfg.RateLimit = 0
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaults.AllowedOrigins
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

func validateRelay(cfg RelayConfig) error {
	var errs []error
	if strings.TrimSpace(cfg.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	switch cfg.Provider {
	case "google", "stub":
	case "openai":
		if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("provider must be google, openai or stub, got %q", cfg.Provider))
	}
	return errors.Join(errs...)
}
