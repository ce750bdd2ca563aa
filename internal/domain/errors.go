package domain

import "errors"

var (
	ErrEmptyText       = errors.New("text to translate is empty")
	ErrInvalidTarget   = errors.New("target language is required")
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrNoTranscript    = errors.New("no transcript captured yet")
)
