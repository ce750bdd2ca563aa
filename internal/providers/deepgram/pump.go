package deepgram

import (
	"errors"
	"fmt"
	"io"
)

var errAudioSend = errors.New("failed to stream audio")

// pumpAudio copies microphone chunks to send until the reader is exhausted.
// A read error is returned as is; a send failure wraps errAudioSend.
func pumpAudio(audio io.Reader, send func([]byte) error, chunkSize int) error {
	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := send(buf[:n]); sendErr != nil {
				return fmt.Errorf("%w: %v", errAudioSend, sendErr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("audio capture error: %w", err)
		}
	}
}
