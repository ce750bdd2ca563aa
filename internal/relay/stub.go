package relay

import (
	"context"
	"strings"
)

// StubProvider answers from a small phrase table. It is meant for offline
// development of the clients.
type StubProvider struct {
	phrases map[string]map[string]string
}

func NewStubProvider() *StubProvider {
	return &StubProvider{phrases: map[string]map[string]string{
		"hello": {"es": "hola", "de": "hallo", "fr": "bonjour", "ja": "こんにちは", "ru": "привет", "vi": "xin chào"},
		"thank you": {"es": "gracias", "de": "danke", "fr": "merci", "ja": "ありがとう", "ru": "спасибо", "vi": "cảm ơn"},
		"good morning": {"es": "buenos días", "de": "guten Morgen", "fr": "bonjour", "ja": "おはようございます"},
		"hola": {"en": "hello", "de": "hallo", "fr": "bonjour"},
		"gracias": {"en": "thank you", "de": "danke", "fr": "merci"},
	}}
}

func (p *StubProvider) Name() string { return "stub" }

func (p *StubProvider) Translate(_ context.Context, req Request) (Result, error) {
	key := strings.ToLower(strings.TrimSpace(req.Text))
	detected := req.From
	if detected == "" {
		detected = p.detect(key)
	}
	if translated, ok := p.phrases[key][req.To]; ok {
		return Result{Text: translated, Detected: detected}, nil
	}
	return Result{Text: "[" + req.To + "] " + strings.TrimSpace(req.Text), Detected: detected}, nil
}

func (p *StubProvider) detect(key string) string {
	switch key {
	case "hola", "gracias":
		return "es"
	default:
		return "en"
	}
}
