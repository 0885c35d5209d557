// Package sessionstore keeps in-flight quiz sessions in a key-value store,
// either in process memory or in Redis.
package sessionstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"swipe-quiz/internal/quiz"
)

const (
	DefaultTTL        = 24 * time.Hour
	DefaultMemorySize = 10000
)

// MemoryStore is a bounded, expiring session store local to one process.
type MemoryStore struct {
	cache *expirable.LRU[string, quiz.SessionRecord]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, quiz.SessionRecord](size, nil, ttl),
	}
}

func (m *MemoryStore) SaveSession(_ context.Context, record quiz.SessionRecord) error {
	record.Decisions = append([]quiz.Decision(nil), record.Decisions...)
	m.cache.Add(record.SessionID, record)
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (quiz.SessionRecord, error) {
	record, ok := m.cache.Get(sessionID)
	if !ok {
		return quiz.SessionRecord{}, quiz.ErrSessionNotFound
	}
	record.Decisions = append([]quiz.Decision(nil), record.Decisions...)
	return record, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	m.cache.Remove(sessionID)
	return nil
}

func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
