package usecase

import (
	"context"
	"fmt"
	"sync"

	"parrot/internal/domain"
	"parrot/internal/lang"
)

// Controller is the surface both UI shells drive: capture toggling plus the
// current language pair used for listening and translating.
type Controller struct {
	engine     *CaptureEngine
	translator *Translator

	mu     sync.Mutex
	source string
	target string
}

func NewController(engine *CaptureEngine, translator *Translator, sourceLang, targetLang string) *Controller {
	if sourceLang == "" {
		sourceLang = lang.Auto
	}
	if targetLang == "" {
		targetLang = "en"
	}
	return &Controller{engine: engine, translator: translator, source: sourceLang, target: targetLang}
}

func (c *Controller) IsSupported() bool {
	return c.engine.IsSupported()
}

// Start begins listening in the current source language.
func (c *Controller) Start(ctx context.Context) domain.CaptureStatus {
	source, _ := c.Languages()
	return c.engine.Start(ctx, source)
}

func (c *Controller) Stop() domain.CaptureStatus {
	return c.engine.Stop()
}

// Toggle stops an active capture or starts a new one.
func (c *Controller) Toggle(ctx context.Context) domain.CaptureStatus {
	switch c.engine.Status().State {
	case domain.CaptureStateListening, domain.CaptureStateRequesting:
		return c.engine.Stop()
	default:
		return c.Start(ctx)
	}
}

func (c *Controller) Clear() {
	c.engine.Clear()
}

func (c *Controller) Status() domain.CaptureStatus {
	return c.engine.Status()
}

func (c *Controller) Transcript() string {
	return c.engine.CurrentTranscript()
}

// Languages returns the current source and target codes.
func (c *Controller) Languages() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source, c.target
}

func (c *Controller) SetSource(code string) error {
	if !lang.Valid(code) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidLanguage, code)
	}
	c.mu.Lock()
	c.source = code
	c.mu.Unlock()
	return nil
}

func (c *Controller) SetTarget(code string) error {
	if !lang.IsTarget(code) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTarget, code)
	}
	c.mu.Lock()
	c.target = code
	c.mu.Unlock()
	return nil
}

// CycleSource moves the source language by step through the language list.
func (c *Controller) CycleSource(step int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = lang.Cycle(lang.Codes(lang.All()), c.source, step)
	return c.source
}

// CycleTarget moves the target language by step, skipping auto.
func (c *Controller) CycleTarget(step int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = lang.Cycle(lang.Codes(lang.Targets()), c.target, step)
	return c.target
}

// Translate translates text between explicit languages.
func (c *Controller) Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.TranslationResult, error) {
	return c.translator.Translate(ctx, text, sourceLang, targetLang)
}

// TranslateTranscript translates the current transcript with the current
// language pair.
func (c *Controller) TranslateTranscript(ctx context.Context) (domain.TranslationResult, error) {
	text := c.engine.CurrentTranscript()
	if text == "" {
		return domain.TranslationResult{}, domain.ErrNoTranscript
	}
	source, target := c.Languages()
	return c.translator.Translate(ctx, text, source, target)
}
