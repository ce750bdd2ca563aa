package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"parrot/internal/domain"
	"parrot/internal/ports"
)

// TranslatorConfig controls what happens with a successful translation.
type TranslatorConfig struct {
	CopyToClipboard bool
}

// Translator runs one user-initiated translation end to end.
type Translator struct {
	gateway   ports.TranslationGateway
	rewriter  ports.TextRewriter
	history   ports.TranslationHistory
	speaker   ports.Speaker
	clipboard ports.Clipboard
	events    ports.EventSink
	log       *zap.Logger
	cfg       TranslatorConfig
	now       func() time.Time
}

// NewTranslator wires the translation flow. rewriter and clipboard may be nil.
func NewTranslator(
	gateway ports.TranslationGateway,
	rewriter ports.TextRewriter,
	history ports.TranslationHistory,
	speaker ports.Speaker,
	clipboard ports.Clipboard,
	events ports.EventSink,
	log *zap.Logger,
	cfg TranslatorConfig,
) *Translator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Translator{
		gateway:   gateway,
		rewriter:  rewriter,
		history:   history,
		speaker:   speaker,
		clipboard: clipboard,
		events:    events,
		log:       log.Named("translator"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Translate sends text to the gateway and, on success, records, speaks and
// reports the result. Empty text returns domain.ErrEmptyText and emits nothing.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.TranslationResult, error) {
	text = strings.TrimSpace(text)
	if text != "" && t.rewriter != nil {
		text = strings.TrimSpace(t.rewriter.Apply(text))
	}
	if text == "" {
		return domain.TranslationResult{}, domain.ErrEmptyText
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}

	request := domain.TranslationRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang}
	t.events.TranslationChanged(domain.TranslationUpdate{Phase: domain.TranslationPhaseTranslating, Request: request})

	result, err := t.gateway.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		t.log.Warn("translation failed",
			zap.String("source", sourceLang),
			zap.String("target", targetLang),
			zap.Error(err),
		)
		t.events.TranslationChanged(domain.TranslationUpdate{
			Phase:   domain.TranslationPhaseFailed,
			Request: request,
			Error:   userMessage(err),
		})
		return domain.TranslationResult{}, err
	}

	t.history.Add(domain.HistoryEntry{
		Original:     text,
		Translated:   result.TranslatedText,
		SourceLang:   sourceLang,
		DetectedLang: result.DetectedSourceLang,
		TargetLang:   targetLang,
		CreatedAt:    t.now(),
	})
	t.speaker.Speak(result.TranslatedText, targetLang)

	if t.cfg.CopyToClipboard && t.clipboard != nil {
		if err := t.clipboard.SetText(ctx, result.TranslatedText); err != nil {
			t.log.Warn("translation ready but clipboard write failed", zap.Error(err))
		}
	}

	t.log.Debug("translation done",
		zap.String("target", targetLang),
		zap.String("detected", result.DetectedSourceLang),
	)
	t.events.TranslationChanged(domain.TranslationUpdate{
		Phase:   domain.TranslationPhaseDone,
		Request: request,
		Result:  &result,
	})
	return result, nil
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "Translation canceled"
	case errors.Is(err, domain.ErrInvalidTarget):
		return "Choose a target language"
	default:
		return err.Error()
	}
}
