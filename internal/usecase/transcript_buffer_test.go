package usecase

import (
	"testing"

	"parrot/internal/domain"
)

func TestTranscriptBufferFinalizedOnlyGrows(t *testing.T) {
	t.Parallel()

	buf := newTranscriptBuffer()
	buf.Apply(domain.RecognitionResult{Segments: []domain.ResultSegment{{Text: "one", Final: true}}})
	buf.Apply(domain.RecognitionResult{ResultIndex: 1, Segments: []domain.ResultSegment{
		{Text: "one", Final: true},
		{Text: "two", Final: true},
	}})

	if got := buf.Finalized(); got != "one two " {
		t.Fatalf("unexpected finalized text: %q", got)
	}
	if got := buf.Text(); got != "one two" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTranscriptBufferInterimReflectsLatestBatch(t *testing.T) {
	t.Parallel()

	buf := newTranscriptBuffer()
	buf.Apply(domain.RecognitionResult{Segments: []domain.ResultSegment{{Text: "hel"}}})
	buf.Apply(domain.RecognitionResult{Segments: []domain.ResultSegment{{Text: "hello"}}})
	if got := buf.Interim(); got != "hello" {
		t.Fatalf("unexpected interim: %q", got)
	}

	buf.Apply(domain.RecognitionResult{Segments: []domain.ResultSegment{{Text: "hello", Final: true}}})
	if got := buf.Interim(); got != "" {
		t.Fatalf("expected interim cleared by final batch, got %q", got)
	}
	if got := buf.Text(); got != "hello" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTranscriptBufferIgnoresEmptyAndReset(t *testing.T) {
	t.Parallel()

	buf := newTranscriptBuffer()
	buf.Apply(domain.RecognitionResult{ResultIndex: -3, Segments: []domain.ResultSegment{{Text: "   ", Final: true}}})
	if got := buf.Text(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}

	buf.Apply(domain.RecognitionResult{Segments: []domain.ResultSegment{{Text: "keep", Final: true}, {Text: "maybe"}}})
	buf.Reset()
	if buf.Text() != "" || buf.Finalized() != "" || buf.Interim() != "" {
		t.Fatalf("expected reset buffer")
	}
}
