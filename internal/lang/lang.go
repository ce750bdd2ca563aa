// Package lang holds the closed set of languages parrot offers.
package lang

import (
	"strings"

	"github.com/samber/lo"
)

// Auto asks the translation provider to detect the source language.
const Auto = "auto"

// Language is one selectable language.
type Language struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Locale string `json:"locale,omitempty"`
}

var languages = []Language{
	{Code: Auto, Name: "Auto"},
	{Code: "en", Name: "English", Locale: "en-US"},
	{Code: "es", Name: "Spanish", Locale: "es-ES"},
	{Code: "de", Name: "German", Locale: "de-DE"},
	{Code: "fr", Name: "French", Locale: "fr-FR"},
	{Code: "hi", Name: "Hindi", Locale: "hi-IN"},
	{Code: "ja", Name: "Japanese", Locale: "ja-JP"},
	{Code: "ko", Name: "Korean", Locale: "ko-KR"},
	{Code: "zh", Name: "Chinese", Locale: "zh-CN"},
	{Code: "ru", Name: "Russian", Locale: "ru-RU"},
	{Code: "vi", Name: "Vietnamese", Locale: "vi-VN"},
}

// All returns every language, Auto first.
func All() []Language {
	return append([]Language(nil), languages...)
}

// Targets returns the languages that can be translated into.
func Targets() []Language {
	return lo.Filter(languages, func(l Language, _ int) bool { return l.Code != Auto })
}

// Valid reports whether code is a known source language.
func Valid(code string) bool {
	return lo.ContainsBy(languages, func(l Language) bool { return l.Code == code })
}

// IsTarget reports whether code is a known target language.
func IsTarget(code string) bool {
	return code != Auto && Valid(code)
}

// Name returns the display name of code, or code itself when unknown.
func Name(code string) string {
	if l, ok := lo.Find(languages, func(l Language) bool { return l.Code == code }); ok {
		return l.Name
	}
	return code
}

// RecognitionLocale maps a language hint to the locale handed to the
// recognizer. Empty and Auto hints resolve to fallback; unknown hints such as
// a full locale pass through unchanged.
func RecognitionLocale(hint, fallback string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" || hint == Auto {
		return fallback
	}
	if l, ok := lo.Find(languages, func(l Language) bool { return l.Code == hint }); ok {
		return l.Locale
	}
	return hint
}

// Cycle steps through codes starting from current, wrapping at both ends.
func Cycle(codes []string, current string, step int) string {
	if len(codes) == 0 {
		return current
	}
	i := lo.IndexOf(codes, current)
	if i < 0 {
		return codes[0]
	}
	n := len(codes)
	return codes[((i+step)%n+n)%n]
}

// Codes returns the codes of langs in order.
func Codes(langs []Language) []string {
	return lo.Map(langs, func(l Language, _ int) string { return l.Code })
}
