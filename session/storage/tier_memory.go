package storage

import (
	"sync"
	"time"
)

// MemoryTier is the ephemeral tier: credentials live for the process only.
type MemoryTier struct {
	mu   sync.Mutex
	pair TokenPair
	set  bool
}

var _ Tier = (*MemoryTier)(nil)

func NewMemoryTier() *MemoryTier {
	return &MemoryTier{}
}

func (m *MemoryTier) Save(pair TokenPair, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	m.set = true
	return nil
}

func (m *MemoryTier) Load() (TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair, m.set && !m.pair.Empty()
}

func (m *MemoryTier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = TokenPair{}
	m.set = false
}
