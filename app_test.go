package main

import (
	"errors"
	"testing"

	"parrot/internal/config"
	"parrot/internal/domain"
)

func TestCaptureLabel(t *testing.T) {
	t.Parallel()

	cases := map[domain.CaptureState]string{
		domain.CaptureStateIdle:        "Stopped",
		domain.CaptureStateRequesting:  "Requesting microphone…",
		domain.CaptureStateListening:   "Listening…",
		domain.CaptureStateStopping:    "Stopping…",
		domain.CaptureStateError:       "Error",
		domain.CaptureStateUnsupported: "Speech recognition unavailable",
	}

	for state, want := range cases {
		state := state
		want := want
		t.Run(string(state), func(t *testing.T) {
			t.Parallel()
			if got := captureLabel(state); got != want {
				t.Fatalf("unexpected label: %q", got)
			}
		})
	}

	if got := captureLabel("unknown"); got != "" {
		t.Fatalf("expected empty unknown label, got %q", got)
	}
}

func TestTranslationLabel(t *testing.T) {
	t.Parallel()

	cases := map[domain.TranslationPhase]string{
		domain.TranslationPhaseTranslating: "Translating…",
		domain.TranslationPhaseDone:        "Done",
		domain.TranslationPhaseFailed:      "Error",
	}
	for phase, want := range cases {
		if got := translationLabel(phase); got != want {
			t.Fatalf("%s: unexpected label %q", phase, got)
		}
	}
	if got := translationLabel("unknown"); got != "" {
		t.Fatalf("expected empty unknown label, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := NewApp(config.Default(), nil, nil)
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
	if _, err := app.TranslateTranscript(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error from bound method, got %v", err)
	}
	if app.IsSupported() {
		t.Fatalf("expected unsupported before startup")
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := NewApp(config.Default(), nil, nil)
	status := app.GetStatus()
	if status.State != domain.CaptureStateIdle || status.Listening {
		t.Fatalf("unexpected status: %+v", status)
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.CaptureStateError || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}
	if info := app.GetRuntimeInfo(); info["error"] != "boot" {
		t.Fatalf("expected boot error in runtime info, got %v", info)
	}
}

func TestLanguagesBeforeStartup(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Translation.TargetLang = "ja"
	app := NewApp(cfg, nil, nil)

	opts := app.Languages()
	if opts.Source != "auto" || opts.Target != "ja" {
		t.Fatalf("unexpected selection: %q %q", opts.Source, opts.Target)
	}
	if len(opts.Sources) != len(opts.Targets)+1 || opts.Sources[0].Code != "auto" {
		t.Fatalf("unexpected language lists: %+v", opts)
	}
	if history := app.GetHistory(); history == nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v", history)
	}
}

func TestEventSinkBeforeStartupIsNoop(t *testing.T) {
	t.Parallel()

	app := NewApp(config.Default(), nil, nil)
	app.CaptureStateChanged(domain.CaptureStatus{State: domain.CaptureStateListening})
	app.TranscriptChanged("hello")
	app.TranslationChanged(domain.TranslationUpdate{Phase: domain.TranslationPhaseDone})
}
