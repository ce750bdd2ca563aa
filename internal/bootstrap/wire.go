package bootstrap

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"parrot/internal/audio"
	"parrot/internal/config"
	"parrot/internal/gateway"
	"parrot/internal/history"
	"parrot/internal/phrasebook"
	"parrot/internal/ports"
	"parrot/internal/providers/deepgram"
	"parrot/internal/providers/webspeech"
	"parrot/internal/speech"
	"parrot/internal/usecase"
)

// Options carries the pieces owned by the UI shell.
type Options struct {
	Events ports.EventSink
	// Clipboard may be nil when the shell has no clipboard access.
	Clipboard ports.Clipboard
	// Bridge is the webview event bus; nil outside the desktop shell.
	Bridge webspeech.Bridge
	Log    *zap.Logger
}

// Services is the assembled runtime graph.
type Services struct {
	Config            config.Config
	Controller        *usecase.Controller
	History           *history.Log
	Phrasebook        *phrasebook.Book
	RecognitionEngine string
	SpeechEngine      string

	closers []func() error
}

// Close releases background workers owned by the graph.
func (s Services) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build wires all backend dependencies for cfg.
func Build(cfg config.Config, opts Options) (Services, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Events == nil {
		return Services{}, errors.New("bootstrap: event sink is required")
	}

	book, err := phrasebook.Load(cfg.Phrasebook.Path, cfg.Phrasebook.IterationLimit, log)
	if err != nil {
		return Services{}, err
	}

	services := Services{Config: cfg, Phrasebook: book}

	source, recognitionEngine, err := buildRecognition(cfg, opts.Bridge, log)
	if err != nil {
		return Services{}, err
	}
	if closer, ok := source.(interface{ Close() }); ok {
		services.closers = append(services.closers, func() error { closer.Close(); return nil })
	}

	speaker, speechEngine, err := buildSpeaker(cfg, opts.Bridge, log)
	if err != nil {
		_ = services.Close()
		return Services{}, err
	}
	if closer, ok := speaker.(interface{ Close() error }); ok {
		services.closers = append(services.closers, closer.Close)
	}

	services.RecognitionEngine = recognitionEngine
	services.SpeechEngine = speechEngine
	services.History = history.New(cfg.Translation.HistoryLimit)

	engine := usecase.NewCaptureEngine(source, opts.Events, log, usecase.CaptureConfig{
		DefaultLanguage: cfg.Recognition.DefaultLanguage,
		RestartDelay:    cfg.Recognition.RestartDelay,
		OpenTimeout:     cfg.Recognition.OpenTimeout,
	})
	translator := usecase.NewTranslator(
		gateway.New(cfg.Gateway.BaseURL, &http.Client{Timeout: cfg.Gateway.Timeout}, log),
		book,
		services.History,
		speaker,
		opts.Clipboard,
		opts.Events,
		log,
		usecase.TranslatorConfig{CopyToClipboard: cfg.Translation.CopyToClipboard},
	)
	services.Controller = usecase.NewController(engine, translator, cfg.Translation.SourceLang, cfg.Translation.TargetLang)

	log.Info("parrot services ready",
		zap.String("recognition", recognitionEngine),
		zap.String("speech", speechEngine),
		zap.String("gateway", cfg.Gateway.BaseURL),
		zap.Int("phrasebook_rules", book.Len()),
	)
	return services, nil
}

// buildRecognition picks the recognizer. With backend auto a configured
// Deepgram key wins, then the webview, then Deepgram reporting unsupported.
func buildRecognition(cfg config.Config, bridge webspeech.Bridge, log *zap.Logger) (ports.RecognitionSource, string, error) {
	backend := cfg.Recognition.Backend
	if backend == "auto" {
		switch {
		case strings.TrimSpace(cfg.Deepgram.APIKey) != "":
			backend = "deepgram"
		case bridge != nil:
			backend = "webspeech"
		default:
			backend = "deepgram"
		}
	}

	switch backend {
	case "webspeech":
		if bridge == nil {
			return nil, "", errors.New("webspeech recognition is only available in the desktop shell")
		}
		return webspeech.NewSource(bridge, log, cfg.Recognition.ProbeTimeout), backend, nil
	case "deepgram":
		capture := audio.NewFFmpegCapture(cfg.Audio.RecorderCommand, log)
		return deepgram.NewSource(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			SmartFormat: cfg.Deepgram.SmartFormat,
			ChunkSize:   cfg.Deepgram.ChunkSize,
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
		}, capture, log), backend, nil
	default:
		return nil, "", fmt.Errorf("unknown recognition backend %q", backend)
	}
}

func buildSpeaker(cfg config.Config, bridge webspeech.Bridge, log *zap.Logger) (ports.Speaker, string, error) {
	backend := cfg.Speech.Backend
	if backend == "auto" {
		switch {
		case bridge != nil:
			backend = "webspeech"
		case strings.TrimSpace(cfg.Speech.Command) != "":
			backend = "exec"
		default:
			backend = "none"
		}
	}

	switch backend {
	case "webspeech":
		if bridge == nil {
			return nil, "", errors.New("webspeech synthesis is only available in the desktop shell")
		}
		return webspeech.NewSpeaker(bridge), backend, nil
	case "exec":
		speaker, err := speech.NewExecSpeaker(cfg.Speech.Command, log)
		if err != nil {
			return nil, "", err
		}
		return speaker, backend, nil
	case "none":
		return speech.Nop{}, backend, nil
	default:
		return nil, "", fmt.Errorf("unknown speech backend %q", backend)
	}
}
