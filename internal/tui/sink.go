package tui

import (
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"parrot/internal/domain"
	"parrot/internal/ports"
)

var _ ports.EventSink = (*Sink)(nil)

// Sink turns engine events into tea messages. It never blocks the caller:
// messages are queued and a newer transcript replaces any queued one, since
// each transcript is a full snapshot.
type Sink struct {
	mu        sync.Mutex
	queue     []tea.Msg
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewSink() *Sink {
	return &Sink{wake: make(chan struct{}, 1), done: make(chan struct{})}
}

// Forward delivers queued messages to send until Close is called.
func (s *Sink) Forward(send func(tea.Msg)) {
	for {
		select {
		case <-s.wake:
			for _, msg := range s.drain() {
				send(msg)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Sink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Sink) CaptureStateChanged(status domain.CaptureStatus) {
	s.push(CaptureMsg{Status: status})
}

func (s *Sink) TranscriptChanged(text string) {
	s.push(TranscriptMsg{Text: text})
}

func (s *Sink) TranslationChanged(update domain.TranslationUpdate) {
	s.push(TranslationMsg{Update: update})
}

func (s *Sink) push(msg tea.Msg) {
	select {
	case <-s.done:
		return
	default:
	}
	s.mu.Lock()
	if _, ok := msg.(TranscriptMsg); ok {
		s.queue = slices.DeleteFunc(s.queue, func(queued tea.Msg) bool {
			_, stale := queued.(TranscriptMsg)
			return stale
		})
	}
	s.queue = append(s.queue, msg)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Sink) drain() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.queue
	s.queue = nil
	return msgs
}
