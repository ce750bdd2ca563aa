// Package webspeech drives the browser Web Speech API inside the desktop
// webview and exposes it as a recognition source and a speaker.
package webspeech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parrot/internal/domain"
	"parrot/internal/ports"
)

var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	errEndedBeforeStart = errors.New("recognition ended before it started")
)

// Capabilities is the feature report sent by the webview.
type Capabilities struct {
	Standard bool `json:"standard"`
	Prefixed bool `json:"prefixed"`
}

func (c Capabilities) Supported() bool {
	return c.Standard || c.Prefixed
}

type permissionReply struct {
	ID      string `json:"id"`
	Granted bool   `json:"granted"`
	Error   string `json:"error"`
}

type openRequest struct {
	ID             string `json:"id"`
	Lang           string `json:"lang"`
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interimResults"`
}

type sessionRef struct {
	ID string `json:"id"`
}

// envelope heads every recognizer event. Seq counts from 1 per session in
// the order the webview sent the events.
type envelope struct {
	ID  string `json:"id"`
	Seq uint64 `json:"seq"`
}

type openFailure struct {
	envelope
	Error string `json:"error"`
}

type resultEvent struct {
	envelope
	domain.RecognitionResult
}

type errorEvent struct {
	envelope
	domain.RecognitionError
}

// Source implements ports.RecognitionSource over the webview bridge.
type Source struct {
	bridge       Bridge
	log          *zap.Logger
	probeTimeout time.Duration

	mu          sync.Mutex
	caps        *Capabilities
	capsReady   chan struct{}
	permissions map[string]chan permissionReply
	opening     map[string]chan error
	sessions    map[string]*session
	cancels     []func()
}

func NewSource(bridge Bridge, log *zap.Logger, probeTimeout time.Duration) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	if probeTimeout <= 0 {
		probeTimeout = 3 * time.Second
	}
	s := &Source{
		bridge:       bridge,
		log:          log.Named("webspeech"),
		probeTimeout: probeTimeout,
		capsReady:    make(chan struct{}),
		permissions:  make(map[string]chan permissionReply),
		opening:      make(map[string]chan error),
		sessions:     make(map[string]*session),
	}
	s.cancels = []func(){
		bridge.On(EventCapabilities, s.onCapabilities),
		bridge.On(EventPermission, s.onPermission),
		bridge.On(EventStarted, s.onStarted),
		bridge.On(EventOpenFailed, s.onOpenFailed),
		bridge.On(EventResult, s.onResult),
		bridge.On(EventError, s.onError),
		bridge.On(EventEnd, s.onEnd),
	}
	return s
}

// Close unsubscribes from the bridge.
func (s *Source) Close() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Supported asks the webview for its capabilities and waits for the report.
// No report within the probe timeout counts as unsupported.
func (s *Source) Supported() bool {
	if caps, ok := s.Capabilities(); ok {
		return caps.Supported()
	}

	s.bridge.Emit(EventProbe, nil)
	select {
	case <-s.capsReady:
	case <-time.After(s.probeTimeout):
		s.log.Warn("no capability report from webview", zap.Duration("timeout", s.probeTimeout))
		return false
	}
	caps, _ := s.Capabilities()
	return caps.Supported()
}

// Capabilities returns the latest report, if any.
func (s *Source) Capabilities() (Capabilities, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caps == nil {
		return Capabilities{}, false
	}
	return *s.caps, true
}

func (s *Source) RequestPermission(ctx context.Context) error {
	id := uuid.NewString()
	reply := make(chan permissionReply, 1)
	s.mu.Lock()
	s.permissions[id] = reply
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.permissions, id)
		s.mu.Unlock()
	}()

	s.bridge.Emit(EventPermissionRequest, sessionRef{ID: id})
	select {
	case r := <-reply:
		if r.Granted {
			return nil
		}
		if r.Error != "" {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, r.Error)
		}
		return ErrPermissionDenied
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Open asks the webview to start a recognizer and waits until it reports
// that recognition started.
func (s *Source) Open(ctx context.Context, cfg ports.RecognitionConfig, handler ports.RecognitionHandler) (ports.RecognitionSession, error) {
	id := uuid.NewString()
	sess := newSession(id, handler)
	ready := make(chan error, 1)

	s.mu.Lock()
	s.sessions[id] = sess
	s.opening[id] = ready
	s.mu.Unlock()

	s.bridge.Emit(EventOpen, openRequest{
		ID:             id,
		Lang:           cfg.Language,
		Continuous:     cfg.Continuous,
		InterimResults: cfg.InterimResults,
	})

	var err error
	select {
	case err = <-ready:
	case <-ctx.Done():
		err = ctx.Err()
		s.bridge.Emit(EventStop, sessionRef{ID: id})
	}
	if err != nil {
		s.forget(id)
		return nil, err
	}

	s.log.Debug("recognizer started", zap.String("id", id), zap.String("lang", cfg.Language))
	return &handle{source: s, id: id}, nil
}

func (s *Source) forget(id string) {
	s.mu.Lock()
	sess := s.sessions[id]
	delete(s.sessions, id)
	delete(s.opening, id)
	s.mu.Unlock()
	if sess != nil {
		sess.close()
	}
}

// settleOpen resolves a pending Open. It reports false when id is not opening.
func (s *Source) settleOpen(id string, err error) bool {
	s.mu.Lock()
	ready, ok := s.opening[id]
	delete(s.opening, id)
	s.mu.Unlock()
	if ok {
		ready <- err
	}
	return ok
}

func (s *Source) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Source) onCapabilities(data ...any) {
	var caps Capabilities
	if err := decodePayload(data, &caps); err != nil {
		s.log.Debug("bad capability report", zap.Error(err))
		return
	}
	s.mu.Lock()
	first := s.caps == nil
	s.caps = &caps
	s.mu.Unlock()
	if first {
		close(s.capsReady)
	}
	s.log.Info("webview speech capabilities", zap.Bool("standard", caps.Standard), zap.Bool("prefixed", caps.Prefixed))
}

func (s *Source) onPermission(data ...any) {
	var reply permissionReply
	if err := decodePayload(data, &reply); err != nil {
		s.log.Debug("bad permission reply", zap.Error(err))
		return
	}
	s.mu.Lock()
	ch, ok := s.permissions[reply.ID]
	s.mu.Unlock()
	if ok {
		select {
		case ch <- reply:
		default:
		}
	}
}

func (s *Source) onStarted(data ...any) {
	var event envelope
	if err := decodePayload(data, &event); err != nil {
		return
	}
	s.sequenced(event, func(*session) {
		s.settleOpen(event.ID, nil)
	})
}

func (s *Source) onOpenFailed(data ...any) {
	var failure openFailure
	if err := decodePayload(data, &failure); err != nil {
		return
	}
	message := failure.Error
	if message == "" {
		message = "recognizer failed to start"
	}
	s.sequenced(failure.envelope, func(*session) {
		s.settleOpen(failure.ID, errors.New(message))
	})
}

func (s *Source) onResult(data ...any) {
	var event resultEvent
	if err := decodePayload(data, &event); err != nil {
		s.log.Debug("bad result event", zap.Error(err))
		return
	}
	result := event.RecognitionResult
	s.sequenced(event.envelope, func(sess *session) {
		sess.push(func(h ports.RecognitionHandler) { h.OnResult(result) })
	})
}

func (s *Source) onError(data ...any) {
	var event errorEvent
	if err := decodePayload(data, &event); err != nil {
		s.log.Debug("bad error event", zap.Error(err))
		return
	}
	recErr := event.RecognitionError
	s.sequenced(event.envelope, func(sess *session) {
		if s.settleOpen(event.ID, recErr) {
			s.forget(event.ID)
			return
		}
		sess.push(func(h ports.RecognitionHandler) { h.OnError(recErr) })
	})
}

func (s *Source) onEnd(data ...any) {
	var event envelope
	if err := decodePayload(data, &event); err != nil {
		return
	}
	s.sequenced(event, func(sess *session) {
		if s.settleOpen(event.ID, errEndedBeforeStart) {
			s.forget(event.ID)
			return
		}
		sess.push(func(h ports.RecognitionHandler) { h.OnEnd() })
		s.forget(event.ID)
	})
}

// sequenced applies a recognizer event in webview order. Events for
// forgotten sessions are dropped.
func (s *Source) sequenced(event envelope, apply func(*session)) {
	sess := s.session(event.ID)
	if sess == nil {
		return
	}
	if event.Seq == 0 {
		s.log.Debug("recognizer event without sequence number", zap.String("id", event.ID))
		return
	}
	sess.sequence(event.Seq, func() { apply(sess) })
}

type handle struct {
	source *Source
	id     string
	once   sync.Once
}

// Stop aborts the webview recognizer and detaches the session. Events already
// queued for the handler are still delivered; later ones are dropped.
func (h *handle) Stop() error {
	h.once.Do(func() {
		h.source.bridge.Emit(EventStop, sessionRef{ID: h.id})
		h.source.forget(h.id)
	})
	return nil
}

// session delivers bridge events to one handler in webview order without
// blocking the bridge callback.
type session struct {
	id      string
	handler ports.RecognitionHandler

	mu     sync.Mutex
	closed bool
	queue  chan func(ports.RecognitionHandler)

	orderMu sync.Mutex
	nextSeq uint64
	held    map[uint64]func()
}

func newSession(id string, handler ports.RecognitionHandler) *session {
	s := &session{
		id:      id,
		handler: handler,
		queue:   make(chan func(ports.RecognitionHandler), 256),
		nextSeq: 1,
		held:    make(map[uint64]func()),
	}
	go s.run()
	return s
}

// sequence runs apply once every event numbered below seq has run. Wails
// hands each event to its own goroutine, so arrival order is arbitrary.
func (s *session) sequence(seq uint64, apply func()) {
	s.orderMu.Lock()
	defer s.orderMu.Unlock()
	if seq < s.nextSeq {
		return
	}
	s.held[seq] = apply
	for {
		next, ok := s.held[s.nextSeq]
		if !ok {
			return
		}
		delete(s.held, s.nextSeq)
		s.nextSeq++
		next()
	}
}

func (s *session) run() {
	for deliver := range s.queue {
		deliver(s.handler)
	}
}

func (s *session) push(deliver func(ports.RecognitionHandler)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue <- deliver
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}
