package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"parrot/internal/domain"
)

func TestControllerToggleUsesSourceLanguage(t *testing.T) {
	t.Parallel()

	source := newFakeRecognitionSource()
	controller, _ := newTestController(t, source, &fakeGateway{})

	if err := controller.SetSource("ja"); err != nil {
		t.Fatalf("set source failed: %v", err)
	}
	status := controller.Toggle(context.Background())
	if status.State != domain.CaptureStateListening || status.Language != "ja-JP" {
		t.Fatalf("unexpected status after first toggle: %+v", status)
	}

	status = controller.Toggle(context.Background())
	if status.State != domain.CaptureStateIdle {
		t.Fatalf("expected idle after second toggle, got %+v", status)
	}
	if source.session(0).stopCalls != 1 {
		t.Fatalf("expected session stop")
	}
}

func TestControllerTranslateTranscript(t *testing.T) {
	t.Parallel()

	source := newFakeRecognitionSource()
	gateway := &fakeGateway{result: domain.TranslationResult{TranslatedText: "hallo welt"}}
	controller, _ := newTestController(t, source, gateway)

	if _, err := controller.TranslateTranscript(context.Background()); !errors.Is(err, domain.ErrNoTranscript) {
		t.Fatalf("expected no transcript error, got %v", err)
	}

	controller.Start(context.Background())
	source.handler(0).OnResult(domain.RecognitionResult{Segments: []domain.ResultSegment{{Text: "hello world", Final: true}}})
	if err := controller.SetTarget("de"); err != nil {
		t.Fatalf("set target failed: %v", err)
	}

	result, err := controller.TranslateTranscript(context.Background())
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if result.TranslatedText != "hallo welt" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gateway.lastText != "hello world" || gateway.lastSource != "auto" || gateway.lastTarget != "de" {
		t.Fatalf("unexpected gateway call: text=%q source=%q target=%q", gateway.lastText, gateway.lastSource, gateway.lastTarget)
	}
	controller.Stop()
}

func TestControllerRejectsUnknownLanguages(t *testing.T) {
	t.Parallel()

	controller, _ := newTestController(t, newFakeRecognitionSource(), &fakeGateway{})

	if err := controller.SetSource("xx"); !errors.Is(err, domain.ErrInvalidLanguage) {
		t.Fatalf("expected invalid language, got %v", err)
	}
	if err := controller.SetTarget("auto"); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Fatalf("expected invalid target, got %v", err)
	}
	source, target := controller.Languages()
	if source != "auto" || target != "en" {
		t.Fatalf("languages changed on error: %q %q", source, target)
	}
}

func TestControllerCycleLanguages(t *testing.T) {
	t.Parallel()

	controller, _ := newTestController(t, newFakeRecognitionSource(), &fakeGateway{})

	if got := controller.CycleTarget(1); got != "es" {
		t.Fatalf("expected es after en, got %q", got)
	}
	if got := controller.CycleTarget(-2); got != "vi" {
		t.Fatalf("expected wrap to vi, got %q", got)
	}
	if got := controller.CycleSource(-1); got != "vi" {
		t.Fatalf("expected source wrap to vi, got %q", got)
	}
	if got := controller.CycleSource(1); got != "auto" {
		t.Fatalf("expected source wrap to auto, got %q", got)
	}
}

func newTestController(t *testing.T, source *fakeRecognitionSource, gateway *fakeGateway) (*Controller, *fakeEventSink) {
	t.Helper()

	events := &fakeEventSink{}
	engine, _ := newTestCaptureEngine(t, source, events)
	translator := NewTranslator(gateway, nil, &fakeHistory{}, &fakeSpeaker{}, nil, events, zap.NewNop(), TranslatorConfig{})
	return NewController(engine, translator, "", ""), events
}
