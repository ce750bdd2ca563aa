package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PARROT_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Recognition.Backend != "auto" || cfg.Recognition.DefaultLanguage != "en-US" {
		t.Fatalf("unexpected recognition defaults: %+v", cfg.Recognition)
	}
	if cfg.Recognition.RestartDelay != 250*time.Millisecond {
		t.Fatalf("unexpected restart delay: %s", cfg.Recognition.RestartDelay)
	}
	if cfg.Gateway.BaseURL != "http://localhost:5000" || cfg.Gateway.Timeout != 0 {
		t.Fatalf("unexpected gateway defaults: %+v", cfg.Gateway)
	}
	if cfg.Translation.SourceLang != "auto" || cfg.Translation.TargetLang != "en" || cfg.Translation.HistoryLimit != 10 {
		t.Fatalf("unexpected translation defaults: %+v", cfg.Translation)
	}
	if cfg.Phrasebook.Path != filepath.Join(home, ".config", "parrot", "phrasebook.yaml") {
		t.Fatalf("unexpected phrasebook path: %q", cfg.Phrasebook.Path)
	}
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "parrot.yaml")
	contents := `
recognition:
  backend: deepgram
  restart_delay: 500ms
gateway:
  base_url: https://relay.example.com
  timeout: 5s
translation:
  target_lang: fr
  history_limit: 3
speech:
  backend: exec
  command: espeak-ng -v {lang}
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("PARROT_CONFIG", path)
	t.Setenv("PARROT_TARGET_LANG", "de")
	t.Setenv("DEEPGRAM_API_KEY", "test-key")
	t.Setenv("PARROT_AUDIO_INPUT_DEVICE", "mic0")
	t.Setenv("PARROT_COPY_TO_CLIPBOARD", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Recognition.Backend != "deepgram" || cfg.Recognition.RestartDelay != 500*time.Millisecond {
		t.Fatalf("file values not applied: %+v", cfg.Recognition)
	}
	if cfg.Gateway.BaseURL != "https://relay.example.com" || cfg.Gateway.Timeout != 5*time.Second {
		t.Fatalf("unexpected gateway config: %+v", cfg.Gateway)
	}
	if cfg.Translation.TargetLang != "de" || cfg.Translation.HistoryLimit != 3 || !cfg.Translation.CopyToClipboard {
		t.Fatalf("unexpected translation config: %+v", cfg.Translation)
	}
	if cfg.Deepgram.APIKey != "test-key" || cfg.Audio.InputDevice != "mic0" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Deepgram, cfg.Audio)
	}
	if cfg.Speech.Backend != "exec" || cfg.Speech.Command != "espeak-ng -v {lang}" {
		t.Fatalf("unexpected speech config: %+v", cfg.Speech)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARROT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARROT_CONFIG", "")
	t.Setenv("PARROT_SAMPLE_RATE", "bad")
	t.Setenv("PARROT_CHANNELS", "-1")
	t.Setenv("PARROT_AUDIO_CHUNK_SIZE", "5")
	t.Setenv("PARROT_RESTART_DELAY_MS", "bad")
	t.Setenv("PARROT_HISTORY_LIMIT", "0")
	t.Setenv("DEEPGRAM_SMART_FORMAT", "not-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("expected audio defaults, got %+v", cfg.Audio)
	}
	if cfg.Deepgram.ChunkSize != 4096 || !cfg.Deepgram.SmartFormat {
		t.Fatalf("expected deepgram defaults, got %+v", cfg.Deepgram)
	}
	if cfg.Recognition.RestartDelay != 250*time.Millisecond {
		t.Fatalf("expected default restart delay, got %s", cfg.Recognition.RestartDelay)
	}
	if cfg.Translation.HistoryLimit != 10 {
		t.Fatalf("expected default history limit, got %d", cfg.Translation.HistoryLimit)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARROT_CONFIG", "")
	t.Setenv("PARROT_RECOGNITION", "carrier-pigeon")
	t.Setenv("PARROT_TARGET_LANG", "auto")
	t.Setenv("PARROT_SPEECH", "exec")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"recognition.backend", "target_lang", "speech.command"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error: %v", want, err)
		}
	}
}

func TestLoadRelayDefaultsAndOverrides(t *testing.T) {
	t.Setenv("RELAY_CONFIG", "")
	t.Setenv("PORT", "8081")
	t.Setenv("RELAY_PROVIDER", "STUB")
	t.Setenv("RELAY_ALLOWED_ORIGINS", "http://localhost:5173, https://parrot.example.com")
	t.Setenv("RELAY_CACHE_SIZE", "64")

	cfg, err := LoadRelay()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.Provider != "stub" {
		t.Fatalf("unexpected relay config: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://parrot.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.Cache.Size != 64 || cfg.Cache.TTL != 10*time.Minute || cfg.RateLimit != 60 {
		t.Fatalf("unexpected cache/rate config: %+v %d", cfg.Cache, cfg.RateLimit)
	}
}

func TestLoadRelayOpenAIRequiresKey(t *testing.T) {
	t.Setenv("RELAY_CONFIG", "")
	t.Setenv("RELAY_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadRelay(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestLoadRelayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte("provider: openai\nopenai:\n  api_key: sk-test\n  model: gpt-4o\ncache:\n  ttl: 1m\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	t.Setenv("RELAY_CONFIG", path)
	t.Setenv("RELAY_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadRelay()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" || cfg.Cache.TTL != time.Minute {
		t.Fatalf("unexpected relay config: %+v", cfg)
	}
}
