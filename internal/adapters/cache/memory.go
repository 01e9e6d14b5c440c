package cache

import (
	"context"
	"innbot/internal/core/domain"
	"sync"
	"time"
)

type entry struct {
	company domain.Company
	expires time.Time
}

// Memory keeps found companies in process memory. A zero TTL keeps entries until restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, identifier string) (domain.Company, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[identifier]
	m.mu.RUnlock()

	if !ok {
		return domain.Company{}, false, nil
	}

	if m.expired(e) {
		m.mu.Lock()
		if current, ok := m.entries[identifier]; ok && m.expired(current) {
			delete(m.entries, identifier)
		}
		m.mu.Unlock()
		return domain.Company{}, false, nil
	}

	return e.company, true, nil
}

func (m *Memory) Set(_ context.Context, identifier string, company domain.Company) error {
	e := entry{company: company}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[identifier] = e
	m.mu.Unlock()

	return nil
}

func (m *Memory) expired(e entry) bool {
	return !e.expires.IsZero() && m.now().After(e.expires)
}
