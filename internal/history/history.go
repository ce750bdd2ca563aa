// Package history keeps the most recent translations in memory.
package history

import (
	"sync"

	"github.com/samber/lo"

	"parrot/internal/domain"
)

const DefaultLimit = 10

// Log is a bounded, newest-first list of completed translations.
type Log struct {
	mu      sync.RWMutex
	limit   int
	entries []domain.HistoryEntry
}

func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Add records entry as the newest and evicts anything beyond the limit.
func (l *Log) Add(entry domain.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = lo.Slice(append([]domain.HistoryEntry{entry}, l.entries...), 0, l.limit)
}

// Entries returns a copy, newest first.
func (l *Log) Entries() []domain.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.HistoryEntry{}, l.entries...)
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
