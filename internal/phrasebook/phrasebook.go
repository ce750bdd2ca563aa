// Package phrasebook rewrites recognized text before translation using
// user-defined substitutions, typically to fix recurring misrecognitions.
package phrasebook

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const defaultLoopLimit = 30

// File is the YAML layout of a phrasebook.
//
//	rules:
//	  - "pull request => PR"
//	  - 's/\bdeep\s*gram\b/Deepgram/g'
//	substitutions:
//	  - match: "par rot"
//	    replace: "parrot"
//	  - pattern: '\bok(ay)?\b'
//	    replace: "OK"
//	    global: true
type File struct {
	Rules         []string `yaml:"rules"`
	Substitutions []Entry  `yaml:"substitutions"`
}

// Entry is one structured substitution. Exactly one of Match and Pattern is set.
type Entry struct {
	Match         string `yaml:"match"`
	Pattern       string `yaml:"pattern"`
	Replace       string `yaml:"replace"`
	Global        bool   `yaml:"global"`
	CaseSensitive bool   `yaml:"case_sensitive"`
}

// Book applies substitutions repeatedly until the text is stable.
type Book struct {
	rules     []rule
	loopLimit int
	log       *zap.Logger
}

// Load reads a phrasebook file. An empty path or a missing file yields an
// empty book.
func Load(path string, loopLimit int, log *zap.Logger) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return newBook(nil, loopLimit, log), nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newBook(nil, loopLimit, log), nil
		}
		return nil, fmt.Errorf("failed to read phrasebook %q: %w", path, err)
	}

	book, err := Parse(contents, loopLimit, log)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phrasebook %q: %w", path, err)
	}
	return book, nil
}

// Parse compiles a phrasebook from YAML.
func Parse(contents []byte, loopLimit int, log *zap.Logger) (*Book, error) {
	var file File
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return nil, err
	}

	rules := make([]rule, 0, len(file.Rules)+len(file.Substitutions))
	for i, line := range file.Rules {
		r, err := parseLine(strings.TrimSpace(line))
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, r)
	}
	for i, entry := range file.Substitutions {
		r, err := compileEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("substitutions[%d]: %w", i, err)
		}
		rules = append(rules, r)
	}
	return newBook(rules, loopLimit, log), nil
}

func newBook(rules []rule, loopLimit int, log *zap.Logger) *Book {
	if loopLimit <= 0 {
		loopLimit = defaultLoopLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Book{rules: rules, loopLimit: loopLimit, log: log.Named("phrasebook")}
}

// Len returns the number of compiled substitutions.
func (b *Book) Len() int {
	return len(b.rules)
}

// Apply rewrites text. Substitutions run in file order, rule lines first,
// and the whole set repeats while anything changes, up to the loop limit.
func (b *Book) Apply(text string) string {
	if len(b.rules) == 0 {
		return text
	}

	result := text
	for pass := 0; pass < b.loopLimit; pass++ {
		changed := false
		for _, r := range b.rules {
			if next, ok := r.apply(result); ok {
				result = next
				changed = true
			}
		}
		if !changed {
			return result
		}
	}

	b.log.Debug("phrasebook did not settle", zap.Int("passes", b.loopLimit))
	return result
}
