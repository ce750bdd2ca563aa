package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"parrot/internal/lang"
)

// Config stores runtime configuration for the parrot client shells.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Deepgram    DeepgramConfig    `yaml:"deepgram"`
	Audio       AudioConfig       `yaml:"audio"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	Speech      SpeechConfig      `yaml:"speech"`
	Phrasebook  PhrasebookConfig  `yaml:"phrasebook"`
	Translation TranslationConfig `yaml:"translation"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type RecognitionConfig struct {
	// Backend is one of auto, webspeech or deepgram.
	Backend         string        `yaml:"backend"`
	DefaultLanguage string        `yaml:"default_language"`
	RestartDelay    time.Duration `yaml:"restart_delay"`
	OpenTimeout     time.Duration `yaml:"open_timeout"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
}

type DeepgramConfig struct {
	APIKey      string `yaml:"api_key"`
	APIBaseURL  string `yaml:"api_base_url"`
	Model       string `yaml:"model"`
	SmartFormat bool   `yaml:"smart_format"`
	ChunkSize   int    `yaml:"chunk_size"`
}

type AudioConfig struct {
	RecorderCommand string `yaml:"recorder_command"`
	InputFormat     string `yaml:"input_format"`
	InputDevice     string `yaml:"input_device"`
	SampleRate      int    `yaml:"sample_rate"`
	Channels        int    `yaml:"channels"`
}

type GatewayConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout of zero leaves the request bounded only by its context.
	Timeout time.Duration `yaml:"timeout"`
}

type SpeechConfig struct {
	// Backend is one of auto, webspeech, exec or none.
	Backend string `yaml:"backend"`
	Command string `yaml:"command"`
}

type PhrasebookConfig struct {
	Path           string `yaml:"path"`
	IterationLimit int    `yaml:"iteration_limit"`
}

type TranslationConfig struct {
	SourceLang      string `yaml:"source_lang"`
	TargetLang      string `yaml:"target_lang"`
	HistoryLimit    int    `yaml:"history_limit"`
	CopyToClipboard bool   `yaml:"copy_to_clipboard"`
}

// Default returns the client configuration before any file or env overrides.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Recognition: RecognitionConfig{
			Backend:         "auto",
			DefaultLanguage: "en-US",
			RestartDelay:    250 * time.Millisecond,
			OpenTimeout:     10 * time.Second,
			ProbeTimeout:    3 * time.Second,
		},
		Deepgram: DeepgramConfig{
			APIBaseURL:  "https://api.deepgram.com/v1",
			Model:       "nova-2",
			SmartFormat: true,
			ChunkSize:   4096,
		},
		Audio: AudioConfig{
			RecorderCommand: "ffmpeg",
			InputFormat:     "pulse",
			InputDevice:     "default",
			SampleRate:      16000,
			Channels:        1,
		},
		Gateway: GatewayConfig{BaseURL: "http://localhost:5000"},
		Speech:  SpeechConfig{Backend: "auto"},
		Phrasebook: PhrasebookConfig{
			IterationLimit: 30,
		},
		Translation: TranslationConfig{
			SourceLang:   lang.Auto,
			TargetLang:   "en",
			HistoryLimit: 10,
		},
	}
}

// Load resolves configuration from defaults, an optional YAML file and
// environment variables, in that order. PARROT_CONFIG names the file; when it
// is unset ~/.config/parrot/config.yaml is used if present.
func Load() (Config, error) {
	cfg := Default()

	home, _ := os.UserHomeDir()
	if home != "" {
		cfg.Phrasebook.Path = filepath.Join(home, ".config", "parrot", "phrasebook.yaml")
	}

	path := strings.TrimSpace(os.Getenv("PARROT_CONFIG"))
	required := path != ""
	if !required && home != "" {
		path = filepath.Join(home, ".config", "parrot", "config.yaml")
	}
	if err := readFile(path, required, &cfg); err != nil {
		return cfg, err
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Log.Level, "PARROT_LOG_LEVEL")
	overrideBool(&cfg.Log.Development, "PARROT_LOG_DEV")

	overrideString(&cfg.Recognition.Backend, "PARROT_RECOGNITION")
	overrideString(&cfg.Recognition.DefaultLanguage, "PARROT_DEFAULT_LANGUAGE")
	overrideMillis(&cfg.Recognition.RestartDelay, "PARROT_RESTART_DELAY_MS")
	overrideMillis(&cfg.Recognition.OpenTimeout, "PARROT_OPEN_TIMEOUT_MS")
	overrideMillis(&cfg.Recognition.ProbeTimeout, "PARROT_PROBE_TIMEOUT_MS")

	overrideString(&cfg.Deepgram.APIKey, "DEEPGRAM_API_KEY")
	overrideString(&cfg.Deepgram.APIBaseURL, "DEEPGRAM_API_BASE")
	overrideString(&cfg.Deepgram.Model, "DEEPGRAM_MODEL")
	overrideBool(&cfg.Deepgram.SmartFormat, "DEEPGRAM_SMART_FORMAT")
	overrideInt(&cfg.Deepgram.ChunkSize, "PARROT_AUDIO_CHUNK_SIZE")

	overrideString(&cfg.Audio.RecorderCommand, "PARROT_FFMPEG_COMMAND")
	overrideString(&cfg.Audio.InputFormat, "PARROT_AUDIO_INPUT_FORMAT")
	overrideString(&cfg.Audio.InputDevice, "PARROT_AUDIO_INPUT_DEVICE")
	overrideInt(&cfg.Audio.SampleRate, "PARROT_SAMPLE_RATE")
	overrideInt(&cfg.Audio.Channels, "PARROT_CHANNELS")

	overrideString(&cfg.Gateway.BaseURL, "PARROT_GATEWAY_URL")
	overrideMillis(&cfg.Gateway.Timeout, "GATEWAY_TIMEOUT_MS")

	overrideString(&cfg.Speech.Backend, "PARROT_SPEECH")
	overrideString(&cfg.Speech.Command, "PARROT_SPEECH_COMMAND")

	overrideString(&cfg.Phrasebook.Path, "PARROT_PHRASEBOOK")
	overrideInt(&cfg.Phrasebook.IterationLimit, "PARROT_PHRASEBOOK_ITERATION_LIMIT")

	overrideString(&cfg.Translation.SourceLang, "PARROT_SOURCE_LANG")
	overrideString(&cfg.Translation.TargetLang, "PARROT_TARGET_LANG")
	overrideInt(&cfg.Translation.HistoryLimit, "PARROT_HISTORY_LIMIT")
	overrideBool(&cfg.Translation.CopyToClipboard, "PARROT_COPY_TO_CLIPBOARD")
}

func normalize(cfg *Config) {
	defaults := Default()

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Recognition.Backend = strings.ToLower(cfg.Recognition.Backend)
	cfg.Speech.Backend = strings.ToLower(cfg.Speech.Backend)
	if cfg.Recognition.DefaultLanguage == "" {
		cfg.Recognition.DefaultLanguage = defaults.Recognition.DefaultLanguage
	}
	if cfg.Recognition.RestartDelay <= 0 {
		cfg.Recognition.RestartDelay = defaults.Recognition.RestartDelay
	}
	if cfg.Recognition.OpenTimeout <= 0 {
		cfg.Recognition.OpenTimeout = defaults.Recognition.OpenTimeout
	}
	if cfg.Recognition.ProbeTimeout <= 0 {
		cfg.Recognition.ProbeTimeout = defaults.Recognition.ProbeTimeout
	}
	if cfg.Deepgram.ChunkSize < 256 {
		cfg.Deepgram.ChunkSize = defaults.Deepgram.ChunkSize
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = defaults.Audio.Channels
	}
	if cfg.Gateway.Timeout < 0 {
		cfg.Gateway.Timeout = 0
	}
	if cfg.Phrasebook.IterationLimit <= 0 {
		cfg.Phrasebook.IterationLimit = defaults.Phrasebook.IterationLimit
	}
	if cfg.Translation.SourceLang == "" {
		cfg.Translation.SourceLang = lang.Auto
	}
	if cfg.Translation.HistoryLimit <= 0 {
		cfg.Translation.HistoryLimit = defaults.Translation.HistoryLimit
	}
}

func validate(cfg Config) error {
	var errs []error
	switch cfg.Recognition.Backend {
	case "auto", "webspeech", "deepgram":
	default:
		errs = append(errs, fmt.Errorf("recognition.backend must be auto, webspeech or deepgram, got %q", cfg.Recognition.Backend))
	}
	switch cfg.Speech.Backend {
	case "auto", "webspeech", "exec", "none":
	default:
		errs = append(errs, fmt.Errorf("speech.backend must be auto, webspeech, exec or none, got %q", cfg.Speech.Backend))
	}
	if cfg.Speech.Backend == "exec" && strings.TrimSpace(cfg.Speech.Command) == "" {
		errs = append(errs, errors.New("speech.command is required for the exec backend"))
	}
	if strings.TrimSpace(cfg.Gateway.BaseURL) == "" {
		errs = append(errs, errors.New("gateway.base_url is required"))
	}
	if !lang.Valid(cfg.Translation.SourceLang) {
		errs = append(errs, fmt.Errorf("translation.source_lang %q is not supported", cfg.Translation.SourceLang))
	}
	if !lang.IsTarget(cfg.Translation.TargetLang) {
		errs = append(errs, fmt.Errorf("translation.target_lang %q is not supported", cfg.Translation.TargetLang))
	}
	return errors.Join(errs...)
}

func readFile(path string, required bool, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

func overrideString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func overrideInt(target *int, key string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	if parsed, err := strconv.Atoi(value); err == nil {
		*target = parsed
	}
}

func overrideBool(target *bool, key string) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*target = true
	case "0", "false", "no", "off":
		*target = false
	}
}

func overrideMillis(target *time.Duration, key string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
		*target = time.Duration(parsed) * time.Millisecond
	}
}

func overrideStringSlice(target *[]string, key string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*target = out
}
