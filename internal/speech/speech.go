// Package speech holds the text-to-speech backends that run outside the webview.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

const defaultUtteranceTimeout = time.Minute

// ExecSpeaker speaks by running a local command such as espeak-ng or say.
// {lang} and {text} in the command are replaced per utterance; without a
// {text} placeholder the text is written to stdin. Utterances play one at a
// time in call order.
type ExecSpeaker struct {
	argv    []string
	timeout time.Duration
	log     *zap.Logger

	queue   chan utterance
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

type utterance struct {
	text string
	lang string
}

func NewExecSpeaker(command string, log *zap.Logger) (*ExecSpeaker, error) {
	parser := shellwords.NewParser()
	argv, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse speech command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("speech command empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &ExecSpeaker{
		argv:    argv,
		timeout: defaultUtteranceTimeout,
		log:     log.Named("speech"),
		queue:   make(chan utterance, 16),
	}
	s.wg.Add(1)
	go s.loop()
	return s, nil
}

// Speak queues text and returns immediately. Failures are only logged.
func (s *ExecSpeaker) Speak(text string, languageCode string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- utterance{text: text, lang: languageCode}:
	default:
		s.log.Debug("speech queue full, dropping utterance")
	}
}

// Close stops accepting utterances and waits for queued ones to finish.
func (s *ExecSpeaker) Close() error {
	s.closeMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.closeMu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *ExecSpeaker) loop() {
	defer s.wg.Done()
	for u := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.run(ctx, u); err != nil {
			s.log.Debug("speech command failed", zap.String("lang", u.lang), zap.Error(err))
		}
		cancel()
	}
}

func (s *ExecSpeaker) run(ctx context.Context, u utterance) error {
	args, viaStdin := expandArgs(s.argv, u)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if viaStdin {
		cmd.Stdin = strings.NewReader(u.text)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

func expandArgs(argv []string, u utterance) ([]string, bool) {
	replacer := strings.NewReplacer("{lang}", u.lang, "{text}", u.text)
	viaStdin := true
	args := make([]string, len(argv))
	for i, arg := range argv {
		if strings.Contains(arg, "{text}") {
			viaStdin = false
		}
		args[i] = replacer.Replace(arg)
	}
	return args, viaStdin
}

// Nop discards everything it is asked to speak.
type Nop struct{}

func (Nop) Speak(string, string) {}
