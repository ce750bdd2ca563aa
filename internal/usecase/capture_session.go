package usecase

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"

	"parrot/internal/domain"
	"parrot/internal/ports"
)

type captureSession struct {
	id         string
	generation uint64
	language   string
	handle     ports.RecognitionSession
}

func (s *captureSession) stop(log *zap.Logger) {
	if s == nil || s.handle == nil {
		return
	}
	if err := s.handle.Stop(); err != nil {
		log.Debug("recognition session stop failed", zap.String("session", s.id), zap.Error(err))
	}
}

// sessionHandler forwards the events of one session to the engine.
// Events wait until the engine has registered (or abandoned) the session.
type sessionHandler struct {
	engine     *CaptureEngine
	generation uint64

	attachOnce sync.Once
	attached   chan struct{}
}

func newSessionHandler(engine *CaptureEngine, generation uint64) *sessionHandler {
	return &sessionHandler{engine: engine, generation: generation, attached: make(chan struct{})}
}

func (h *sessionHandler) attach() {
	h.attachOnce.Do(func() { close(h.attached) })
}

func (h *sessionHandler) OnResult(result domain.RecognitionResult) {
	<-h.attached
	h.engine.handleResult(h.generation, result)
}

func (h *sessionHandler) OnError(err domain.RecognitionError) {
	<-h.attached
	h.engine.handleError(h.generation, err)
}

func (h *sessionHandler) OnEnd() {
	<-h.attached
	h.engine.handleEnd(h.generation)
}

type restartScheduler interface {
	Schedule(fn func())
	Cancel()
}

type debouncedRestart struct {
	debounced func(func())
}

func newDebouncedRestart(delay time.Duration) *debouncedRestart {
	return &debouncedRestart{debounced: debounce.New(delay)}
}

func (d *debouncedRestart) Schedule(fn func()) {
	d.debounced(fn)
}

// Cancel replaces any pending restart with a no-op.
func (d *debouncedRestart) Cancel() {
	d.debounced(func() {})
}
