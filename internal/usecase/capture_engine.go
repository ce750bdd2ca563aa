package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parrot/internal/domain"
	"parrot/internal/lang"
	"parrot/internal/ports"
)

// CaptureConfig controls recognition session behavior.
type CaptureConfig struct {
	// DefaultLanguage is used when the caller asks for "auto".
	DefaultLanguage string
	RestartDelay    time.Duration
	OpenTimeout     time.Duration
}

// CaptureEngine owns the single recognition session and turns its events
// into a stable capture state and transcript.
type CaptureEngine struct {
	source  ports.RecognitionSource
	events  ports.EventSink
	log     *zap.Logger
	cfg     CaptureConfig
	restart restartScheduler

	probeOnce sync.Once
	supported bool

	mu            sync.Mutex
	state         domain.CaptureState
	reason        domain.CaptureReason
	message       string
	language      string
	granted       bool
	stopRequested bool
	generation    uint64
	restarts      int
	current       *captureSession
	buffer        *transcriptBuffer
}

func NewCaptureEngine(
	source ports.RecognitionSource,
	events ports.EventSink,
	log *zap.Logger,
	cfg CaptureConfig,
) *CaptureEngine {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en-US"
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = 250 * time.Millisecond
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CaptureEngine{
		source:  source,
		events:  events,
		log:     log.Named("capture"),
		cfg:     cfg,
		restart: newDebouncedRestart(cfg.RestartDelay),
		state:   domain.CaptureStateIdle,
		buffer:  newTranscriptBuffer(),
	}
}

// IsSupported probes the recognition capability once and caches the answer.
func (c *CaptureEngine) IsSupported() bool {
	c.probeOnce.Do(func() {
		c.supported = c.source.Supported()
		c.log.Info("recognition capability probed", zap.Bool("supported", c.supported))
	})
	return c.supported
}

// Start requests microphone access when needed and opens a recognition session.
// Failures are reported through the returned status and the event sink.
func (c *CaptureEngine) Start(ctx context.Context, languageHint string) domain.CaptureStatus {
	if !c.IsSupported() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.transitionLocked(domain.CaptureStateUnsupported, domain.CaptureReasonUnsupported,
			"Speech recognition is not supported here. Use a Chromium-based browser engine or configure cloud recognition.")
		return c.statusLocked()
	}

	c.mu.Lock()
	previous := c.current
	c.current = nil
	c.restart.Cancel()
	c.generation++
	gen := c.generation
	c.stopRequested = false
	c.restarts = 0
	c.language = lang.RecognitionLocale(languageHint, c.cfg.DefaultLanguage)
	language := c.language
	c.buffer.Reset()
	c.events.TranscriptChanged("")
	c.transitionLocked(domain.CaptureStateRequesting, domain.CaptureReasonNone, "")
	needPermission := !c.granted
	c.mu.Unlock()

	previous.stop(c.log)

	if needPermission {
		if err := c.source.RequestPermission(ctx); err != nil {
			c.mu.Lock()
			defer c.mu.Unlock()
			if gen == c.generation && c.state == domain.CaptureStateRequesting {
				c.log.Warn("microphone permission denied", zap.Error(err))
				c.transitionLocked(domain.CaptureStateError, domain.CaptureReasonPermissionDenied,
					"Microphone access was denied. Grant microphone permission and try again.")
			}
			return c.statusLocked()
		}
		c.mu.Lock()
		c.granted = true
		c.mu.Unlock()
	}

	c.openSession(ctx, gen, language, false)
	return c.Status()
}

// Stop closes the active session and suppresses any pending restart.
// It is a no-op unless a session is requested or listening.
func (c *CaptureEngine) Stop() domain.CaptureStatus {
	c.mu.Lock()
	c.stopRequested = true
	c.restart.Cancel()
	if c.state != domain.CaptureStateRequesting && c.state != domain.CaptureStateListening {
		status := c.statusLocked()
		c.mu.Unlock()
		return status
	}
	c.generation++
	session := c.current
	c.current = nil
	c.transitionLocked(domain.CaptureStateStopping, domain.CaptureReasonNone, "")
	c.mu.Unlock()

	session.stop(c.log)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == domain.CaptureStateStopping {
		c.transitionLocked(domain.CaptureStateIdle, domain.CaptureReasonNone, "")
	}
	return c.statusLocked()
}

// CurrentTranscript returns the finalized and interim text, trimmed.
func (c *CaptureEngine) CurrentTranscript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Text()
}

// Clear empties the transcript without touching the capture state.
func (c *CaptureEngine) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer.Reset()
	c.events.TranscriptChanged("")
}

// Status returns the current capture status.
func (c *CaptureEngine) Status() domain.CaptureStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *CaptureEngine) openSession(ctx context.Context, gen uint64, language string, restart bool) {
	c.mu.Lock()
	if gen != c.generation || c.stopRequested {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	openCtx, cancel := context.WithTimeout(ctx, c.cfg.OpenTimeout)
	defer cancel()

	handler := newSessionHandler(c, gen)
	handle, err := c.source.Open(openCtx, ports.RecognitionConfig{
		Language:       language,
		Continuous:     true,
		InterimResults: true,
	}, handler)

	c.mu.Lock()
	stale := gen != c.generation || c.stopRequested
	switch {
	case stale:
		c.mu.Unlock()
		handler.attach()
		if err == nil && handle != nil {
			if stopErr := handle.Stop(); stopErr != nil {
				c.log.Debug("abandoned session stop failed", zap.Error(stopErr))
			}
		}
		return
	case err != nil:
		reason := domain.CaptureReasonOpenFailed
		if restart {
			reason = domain.CaptureReasonRestartFailed
		}
		c.log.Warn("recognition session open failed", zap.Bool("restart", restart), zap.Error(err))
		c.transitionLocked(domain.CaptureStateError, reason, "Could not start speech recognition: "+err.Error())
		c.mu.Unlock()
		handler.attach()
		return
	}

	session := &captureSession{id: uuid.NewString(), generation: gen, language: language, handle: handle}
	c.current = session
	if restart {
		c.restarts++
		c.log.Info("recognition session restarted", zap.String("session", session.id), zap.Int("restarts", c.restarts))
	} else {
		c.log.Info("recognition session opened", zap.String("session", session.id), zap.String("language", language))
	}
	c.transitionLocked(domain.CaptureStateListening, domain.CaptureReasonNone, "")
	c.mu.Unlock()
	handler.attach()
}

func (c *CaptureEngine) handleResult(gen uint64, result domain.RecognitionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCurrentLocked(gen) {
		return
	}
	c.buffer.Apply(result)
	c.events.TranscriptChanged(c.buffer.Text())
}

func (c *CaptureEngine) handleError(gen uint64, recErr domain.RecognitionError) {
	c.mu.Lock()
	if !c.isCurrentLocked(gen) {
		c.mu.Unlock()
		return
	}
	if recErr.Code.Transient() {
		c.log.Debug("transient recognition error ignored", zap.String("code", string(recErr.Code)))
		c.mu.Unlock()
		return
	}

	session := c.current
	c.current = nil
	c.generation++
	c.restart.Cancel()

	reason := domain.CaptureReasonRecognition
	if recErr.Code == domain.RecognitionErrorNotAllowed || recErr.Code == domain.RecognitionErrorServiceNotAllowed {
		reason = domain.CaptureReasonPermissionDenied
		c.granted = false
	}
	c.log.Warn("recognition failed", zap.String("session", session.id), zap.String("code", string(recErr.Code)), zap.String("detail", recErr.Message))
	c.transitionLocked(domain.CaptureStateError, reason, recognitionMessage(recErr))
	c.mu.Unlock()

	session.stop(c.log)
}

func (c *CaptureEngine) handleEnd(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.generation != gen {
		return
	}
	session := c.current
	c.current = nil
	if c.stopRequested || c.state != domain.CaptureStateListening {
		return
	}

	c.log.Info("recognition session ended unexpectedly, scheduling restart", zap.String("session", session.id))
	language := session.language
	c.restart.Schedule(func() { c.reopen(gen, language) })
}

func (c *CaptureEngine) reopen(gen uint64, language string) {
	c.mu.Lock()
	if gen != c.generation || c.stopRequested || c.state != domain.CaptureStateListening || c.current != nil {
		c.mu.Unlock()
		return
	}
	c.generation++
	next := c.generation
	c.mu.Unlock()

	c.openSession(context.Background(), next, language, true)
}

func (c *CaptureEngine) isCurrentLocked(gen uint64) bool {
	return !c.stopRequested && c.current != nil && c.current.generation == gen
}

func (c *CaptureEngine) transitionLocked(state domain.CaptureState, reason domain.CaptureReason, message string) {
	c.state = state
	c.reason = reason
	c.message = message
	c.events.CaptureStateChanged(c.statusLocked())
}

func (c *CaptureEngine) statusLocked() domain.CaptureStatus {
	return domain.CaptureStatus{
		State:     c.state,
		Reason:    c.reason,
		Message:   c.message,
		Listening: c.state == domain.CaptureStateListening,
		Language:  c.language,
		Restarts:  c.restarts,
	}
}

func recognitionMessage(err domain.RecognitionError) string {
	switch err.Code {
	case domain.RecognitionErrorNotAllowed, domain.RecognitionErrorServiceNotAllowed:
		return "Microphone access was denied. Grant microphone permission and try again."
	case domain.RecognitionErrorNetwork:
		return "Speech recognition lost its network connection."
	case domain.RecognitionErrorAudioCapture:
		return "No microphone could be captured."
	case domain.RecognitionErrorAborted:
		return "Speech recognition was aborted."
	case domain.RecognitionErrorLanguageNotSupported:
		return "The selected language is not supported by the recognizer."
	default:
		return "Speech recognition failed: " + err.Error()
	}
}
