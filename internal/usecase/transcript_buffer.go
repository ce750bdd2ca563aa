package usecase

import (
	"strings"

	"parrot/internal/domain"
)

// transcriptBuffer accumulates recognized text for the current capture.
// Finalized text only grows; interim text is replaced by every batch.
type transcriptBuffer struct {
	finalized strings.Builder
	interim   string
}

func newTranscriptBuffer() *transcriptBuffer {
	return &transcriptBuffer{}
}

func (b *transcriptBuffer) Apply(result domain.RecognitionResult) {
	start := result.ResultIndex
	if start < 0 {
		start = 0
	}

	b.interim = ""
	for i := start; i < len(result.Segments); i++ {
		segment := result.Segments[i]
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		if segment.Final {
			b.finalized.WriteString(text)
			b.finalized.WriteString(" ")
			continue
		}
		b.interim = text
	}
}

func (b *transcriptBuffer) Finalized() string {
	return b.finalized.String()
}

func (b *transcriptBuffer) Interim() string {
	return b.interim
}

func (b *transcriptBuffer) Text() string {
	return strings.TrimSpace(b.finalized.String() + b.interim)
}

func (b *transcriptBuffer) Reset() {
	b.finalized.Reset()
	b.interim = ""
}
