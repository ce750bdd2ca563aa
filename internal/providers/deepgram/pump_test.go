package deepgram

import (
	"bytes"
	"errors"
	"testing"
)

func TestPumpAudioSendsChunksUntilEOF(t *testing.T) {
	t.Parallel()

	var sent [][]byte
	err := pumpAudio(bytes.NewReader(make([]byte, 600)), func(chunk []byte) error {
		sent = append(sent, append([]byte(nil), chunk...))
		return nil
	}, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, chunk := range sent {
		if len(chunk) > 256 {
			t.Fatalf("chunk exceeds size: %d", len(chunk))
		}
		total += len(chunk)
	}
	if total != 600 {
		t.Fatalf("expected 600 bytes sent, got %d", total)
	}
}

func TestPumpAudioReportsSendError(t *testing.T) {
	t.Parallel()

	err := pumpAudio(bytes.NewReader([]byte("abc")), func([]byte) error {
		return errors.New("socket closed")
	}, 256)
	if !errors.Is(err, errAudioSend) {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestPumpAudioReportsReadError(t *testing.T) {
	t.Parallel()

	err := pumpAudio(errorReader{err: errors.New("device gone")}, func([]byte) error { return nil }, 256)
	if err == nil || errors.Is(err, errAudioSend) {
		t.Fatalf("expected read error, got %v", err)
	}
}

type errorReader struct {
	err error
}

func (r errorReader) Read(_ []byte) (int, error) { return 0, r.err }
