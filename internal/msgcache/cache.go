package msgcache

import (
	"context"
	"strings"
	"sync"
)

// Store records the chat lines the bot has already sent in each game so
// the generator can avoid repeating itself. Entries are append-only and
// only ever read back truncated to the most recent n.
type Store interface {
	Append(ctx context.Context, gameID, text string) error
	Recent(ctx context.Context, gameID string, n int) ([]string, error)
}

// MemoryStore is the default in-process implementation. Each game id is
// owned by exactly one session worker, so contention is minimal.
type MemoryStore struct {
	mu   sync.RWMutex
	sent map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sent: make(map[string][]string)}
}

func (s *MemoryStore) Append(_ context.Context, gameID, text string) error {
	if strings.TrimSpace(gameID) == "" || text == "" {
		return nil
	}
	s.mu.Lock()
	s.sent[gameID] = append(s.sent[gameID], text)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, gameID string, n int) ([]string, error) {
	s.mu.RLock()
	all := s.sent[gameID]
	s.mu.RUnlock()
	if n <= 0 || len(all) == 0 {
		return nil, nil
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]string(nil), all...), nil
}
