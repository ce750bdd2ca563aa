package ports

import (
	"context"
	"io"

	"parrot/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Available() bool
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// RecognitionConfig describes one recognition session.
type RecognitionConfig struct {
	Language       string
	Continuous     bool
	InterimResults bool
}

// RecognitionHandler receives the events of one recognition session.
// Implementations of RecognitionSource must not invoke it from inside Open.
type RecognitionHandler interface {
	OnResult(result domain.RecognitionResult)
	OnError(err domain.RecognitionError)
	OnEnd()
}

// RecognitionSession is an open connection to the recognizer.
type RecognitionSession interface {
	Stop() error
}

// RecognitionSource is the platform speech-recognition capability.
type RecognitionSource interface {
	Supported() bool
	RequestPermission(ctx context.Context) error
	Open(ctx context.Context, cfg RecognitionConfig, handler RecognitionHandler) (RecognitionSession, error)
}

// Speaker plays text aloud. Speak never blocks on playback.
type Speaker interface {
	Speak(text string, languageCode string)
}

// TranslationGateway performs one translation request against the relay.
type TranslationGateway interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.TranslationResult, error)
}

// TranslationHistory records completed translations.
type TranslationHistory interface {
	Add(entry domain.HistoryEntry)
}

// TextRewriter rewrites text before translation.
type TextRewriter interface {
	Apply(text string) string
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
// Calls happen while engine locks are held; implementations must not call back.
type EventSink interface {
	CaptureStateChanged(status domain.CaptureStatus)
	TranscriptChanged(text string)
	TranslationChanged(update domain.TranslationUpdate)
}
