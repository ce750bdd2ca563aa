package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parrot/internal/domain"
	"parrot/internal/ports"
)

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
	ChunkSize   int
	Audio       ports.AudioConfig
}

// Source implements ports.RecognitionSource with Deepgram streaming
// recognition fed by local microphone capture.
type Source struct {
	cfg    Config
	audio  ports.AudioCapture
	dialer *websocket.Dialer
	log    *zap.Logger
}

func NewSource(cfg Config, audio ports.AudioCapture, log *zap.Logger) *Source {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{cfg: cfg, audio: audio, dialer: websocket.DefaultDialer, log: log.Named("deepgram")}
}

func (s *Source) Supported() bool {
	return strings.TrimSpace(s.cfg.APIKey) != "" && s.audio != nil && s.audio.Available()
}

// RequestPermission opens and closes the capture device once to confirm access.
func (s *Source) RequestPermission(ctx context.Context) error {
	session, err := s.audio.Start(ctx, s.cfg.Audio)
	if err != nil {
		return fmt.Errorf("microphone unavailable: %w", err)
	}
	return session.Stop()
}

// Open dials Deepgram and starts streaming microphone audio. ctx bounds the
// dial and capture startup only; the session lives until Stop or the server
// closes the stream.
func (s *Source) Open(ctx context.Context, cfg ports.RecognitionConfig, handler ports.RecognitionHandler) (ports.RecognitionSession, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, errors.New("DEEPGRAM_API_KEY is not configured")
	}

	wsURL, err := buildListenURL(s.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+s.cfg.APIKey)

	conn, _, err := s.dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}

	captureCtx, cancel := context.WithCancel(context.Background())
	audio, err := s.audio.Start(captureCtx, s.cfg.Audio)
	if err != nil {
		cancel()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start microphone capture: %w", err)
	}

	session := &streamingSession{
		conn:      conn,
		audio:     audio,
		cancel:    cancel,
		handler:   handler,
		chunkSize: s.cfg.ChunkSize,
		log:       s.log,
		done:      make(chan struct{}),
	}
	session.run()
	return session, nil
}

type streamingSession struct {
	conn      *websocket.Conn
	audio     ports.AudioSession
	cancel    context.CancelFunc
	handler   ports.RecognitionHandler
	chunkSize int
	log       *zap.Logger

	wg   sync.WaitGroup
	done chan struct{}

	stopping atomic.Bool
	finished atomic.Bool
	stopOnce sync.Once
	failOnce sync.Once
}

func (s *streamingSession) run() {
	s.wg.Add(2)
	go s.writeLoop()
	go s.readLoop()
	go func() {
		s.wg.Wait()
		s.cancel()
		_ = s.conn.Close()
		close(s.done)
		s.handler.OnEnd()
	}()
}

// Stop ends capture and closes the socket without waiting for the loops,
// so it is safe to call from a handler callback.
func (s *streamingSession) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.stopping.Store(true)
		err = s.audio.Stop()
		s.cancel()
		_ = s.conn.Close()
	})
	return err
}

// Wait blocks until both loops have exited.
func (s *streamingSession) Wait() {
	<-s.done
}

func (s *streamingSession) fail(code domain.RecognitionErrorCode, message string) {
	if s.stopping.Load() || s.finished.Load() {
		return
	}
	s.failOnce.Do(func() {
		s.log.Warn("deepgram session failed", zap.String("code", string(code)), zap.String("detail", message))
		s.handler.OnError(domain.RecognitionError{Code: code, Message: message})
	})
}

func (s *streamingSession) writeLoop() {
	defer s.wg.Done()

	err := pumpAudio(s.audio, func(chunk []byte) error {
		return s.conn.WriteMessage(websocket.BinaryMessage, chunk)
	}, s.chunkSize)
	switch {
	case errors.Is(err, errAudioSend):
		s.fail(domain.RecognitionErrorNetwork, err.Error())
		return
	case err != nil:
		s.fail(domain.RecognitionErrorAudioCapture, err.Error())
		_ = s.conn.Close()
		return
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		s.log.Debug("close stream not delivered", zap.Error(err))
	}
}

func (s *streamingSession) readLoop() {
	defer s.wg.Done()
	defer func() {
		s.finished.Store(true)
		s.cancel()
	}()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if !isNormalClose(err) {
				s.fail(domain.RecognitionErrorNetwork, err.Error())
			}
			return
		}

		var response deepgramResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			s.log.Debug("undecodable provider event", zap.Error(err))
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			s.fail(domain.RecognitionErrorNetwork, message)
			return
		}

		transcript := extractTranscript(response)
		if transcript == "" {
			continue
		}
		s.handler.OnResult(domain.RecognitionResult{
			Segments: []domain.ResultSegment{{Text: transcript, Final: response.IsFinal || response.SpeechFinal}},
		})
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

type deepgramResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`

	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func extractTranscript(response deepgramResponse) string {
	if len(response.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(response.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(response.Results.Channels) > 0 && len(response.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(response.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

// listenLanguage maps a BCP-47 locale to the code Deepgram expects.
// English keeps its region; other languages use the primary subtag.
func listenLanguage(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" || strings.HasPrefix(strings.ToLower(locale), "en") {
		return locale
	}
	primary, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(primary)
}

func buildListenURL(providerCfg Config, recCfg ports.RecognitionConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if base == "" {
		base = "https://api.deepgram.com/v1"
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	audio := providerCfg.Audio
	if audio.SampleRate <= 0 {
		audio.SampleRate = 16000
	}
	if audio.Channels <= 0 {
		audio.Channels = 1
	}

	query := listenURL.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", "linear16")
	query.Set("sample_rate", fmt.Sprintf("%d", audio.SampleRate))
	query.Set("channels", fmt.Sprintf("%d", audio.Channels))
	query.Set("interim_results", fmt.Sprintf("%t", recCfg.InterimResults))
	query.Set("smart_format", fmt.Sprintf("%t", providerCfg.SmartFormat))
	if language := listenLanguage(recCfg.Language); language != "" {
		query.Set("language", language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
