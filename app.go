package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"parrot/internal/bootstrap"
	"parrot/internal/config"
	"parrot/internal/domain"
	"parrot/internal/lang"
	"parrot/internal/providers/webspeech"
	"parrot/internal/usecase"
)

const (
	eventCapture     = "parrot:capture"
	eventTranscript  = "parrot:transcript"
	eventTranslation = "parrot:translation"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	cfg      config.Config
	log      *zap.Logger
	bridge   *webspeech.WailsBridge
	services bootstrap.Services

	controller *usecase.Controller
	bootErr    error
}

// LanguageOptions lists the selectable languages and the current pair.
type LanguageOptions struct {
	Sources []lang.Language `json:"sources"`
	Targets []lang.Language `json:"targets"`
	Source  string          `json:"source"`
	Target  string          `json:"target"`
}

type captureEvent struct {
	domain.CaptureStatus
	Label string `json:"label"`
}

type translationEvent struct {
	domain.TranslationUpdate
	Label string `json:"label"`
}

func NewApp(cfg config.Config, cfgErr error, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{cfg: cfg, bootErr: cfgErr, log: log, bridge: webspeech.NewWailsBridge()}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.bridge.Bind(ctx)

	if a.bootErr != nil {
		a.log.Error("configuration invalid", zap.Error(a.bootErr))
		a.CaptureStateChanged(a.GetStatus())
		return
	}

	services, err := bootstrap.Build(a.cfg, bootstrap.Options{
		Events:    a,
		Clipboard: &wailsClipboard{},
		Bridge:    a.bridge,
		Log:       a.log,
	})
	if err != nil {
		a.bootErr = err
		a.log.Error("startup failed", zap.Error(err))
		a.CaptureStateChanged(a.GetStatus())
		return
	}

	a.services = services
	a.controller = services.Controller
	a.CaptureStateChanged(a.controller.Status())
}

func (a *App) shutdown(_ context.Context) {
	if a.controller != nil {
		a.controller.Stop()
	}
	if err := a.services.Close(); err != nil {
		a.log.Warn("shutdown cleanup failed", zap.Error(err))
	}
	_ = a.log.Sync()
}

// IsSupported reports whether speech recognition is available.
func (a *App) IsSupported() bool {
	if a.requireReady() != nil {
		return false
	}
	return a.controller.IsSupported()
}

// StartListening opens a capture session in the current source language.
func (a *App) StartListening() (domain.CaptureStatus, error) {
	if err := a.requireReady(); err != nil {
		return a.GetStatus(), err
	}
	return a.controller.Start(a.ctx), nil
}

// StopListening ends the capture session.
func (a *App) StopListening() (domain.CaptureStatus, error) {
	if err := a.requireReady(); err != nil {
		return a.GetStatus(), err
	}
	return a.controller.Stop(), nil
}

// ToggleListening starts or stops capture depending on the current state.
func (a *App) ToggleListening() (domain.CaptureStatus, error) {
	if err := a.requireReady(); err != nil {
		return a.GetStatus(), err
	}
	return a.controller.Toggle(a.ctx), nil
}

// ClearTranscript empties the transcript.
func (a *App) ClearTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.Clear()
	return nil
}

// GetStatus returns the current capture status.
func (a *App) GetStatus() domain.CaptureStatus {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.CaptureStatus{State: domain.CaptureStateError, Message: a.bootErr.Error()}
		}
		return domain.CaptureStatus{State: domain.CaptureStateIdle}
	}
	return a.controller.Status()
}

// GetTranscript returns the current transcript.
func (a *App) GetTranscript() string {
	if a.controller == nil {
		return ""
	}
	return a.controller.Transcript()
}

// SetLanguages selects the source and target languages.
func (a *App) SetLanguages(source, target string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.controller.SetSource(source); err != nil {
		return err
	}
	return a.controller.SetTarget(target)
}

// Translate translates free text between explicit languages.
func (a *App) Translate(text, source, target string) (domain.TranslationResult, error) {
	if err := a.requireReady(); err != nil {
		return domain.TranslationResult{}, err
	}
	return a.controller.Translate(a.ctx, text, source, target)
}

// TranslateTranscript translates the current transcript.
func (a *App) TranslateTranscript() (domain.TranslationResult, error) {
	if err := a.requireReady(); err != nil {
		return domain.TranslationResult{}, err
	}
	return a.controller.TranslateTranscript(a.ctx)
}

// GetHistory returns recent translations, newest first.
func (a *App) GetHistory() []domain.HistoryEntry {
	if a.services.History == nil {
		return []domain.HistoryEntry{}
	}
	return a.services.History.Entries()
}

// ClearHistory forgets all recent translations.
func (a *App) ClearHistory() {
	if a.services.History != nil {
		a.services.History.Clear()
	}
}

// Languages returns the language lists and the current selection.
func (a *App) Languages() LanguageOptions {
	source, target := a.cfg.Translation.SourceLang, a.cfg.Translation.TargetLang
	if a.controller != nil {
		source, target = a.controller.Languages()
	}
	return LanguageOptions{Sources: lang.All(), Targets: lang.Targets(), Source: source, Target: target}
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	info := map[string]string{
		"recognition":     a.services.RecognitionEngine,
		"speech":          a.services.SpeechEngine,
		"gateway":         a.cfg.Gateway.BaseURL,
		"defaultLanguage": a.cfg.Recognition.DefaultLanguage,
		"historyLimit":    fmt.Sprint(a.cfg.Translation.HistoryLimit),
		"phrasebook":      a.cfg.Phrasebook.Path,
	}
	if a.services.Phrasebook != nil {
		info["phrasebookRules"] = fmt.Sprint(a.services.Phrasebook.Len())
	}
	if a.services.RecognitionEngine == "deepgram" {
		info["model"] = a.cfg.Deepgram.Model
		info["audioInput"] = a.cfg.Audio.InputDevice
	}
	return info
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// CaptureStateChanged emits capture lifecycle updates to the frontend.
func (a *App) CaptureStateChanged(status domain.CaptureStatus) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventCapture, captureEvent{CaptureStatus: status, Label: captureLabel(status.State)})
}

// TranscriptChanged emits the live transcript.
func (a *App) TranscriptChanged(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]string{"text": text})
}

// TranslationChanged emits translation progress.
func (a *App) TranslationChanged(update domain.TranslationUpdate) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranslation, translationEvent{TranslationUpdate: update, Label: translationLabel(update.Phase)})
}

func captureLabel(state domain.CaptureState) string {
	switch state {
	case domain.CaptureStateIdle:
		return "Stopped"
	case domain.CaptureStateRequesting:
		return "Requesting microphone…"
	case domain.CaptureStateListening:
		return "Listening…"
	case domain.CaptureStateStopping:
		return "Stopping…"
	case domain.CaptureStateError:
		return "Error"
	case domain.CaptureStateUnsupported:
		return "Speech recognition unavailable"
	default:
		return ""
	}
}

func translationLabel(phase domain.TranslationPhase) string {
	switch phase {
	case domain.TranslationPhaseTranslating:
		return "Translating…"
	case domain.TranslationPhaseDone:
		return "Done"
	case domain.TranslationPhaseFailed:
		return "Error"
	default:
		return ""
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
