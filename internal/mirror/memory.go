package mirror

import (
	"context"
	"sync"

	"github.com/devxankit/mv-store-cart/internal/domain"
)

// MemoryMirror holds the snapshot in memory. Used in tests and when the
// agent runs without Redis; state then only lives for the process lifetime.
type MemoryMirror struct {
	mu    sync.RWMutex
	state persistedState
	has   bool
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{}
}

func (m *MemoryMirror) Load(context.Context) (domain.CartSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.has {
		return domain.CartSnapshot{}, ErrMirrorMiss
	}
	return m.state.snapshot(), nil
}

func (m *MemoryMirror) Save(_ context.Context, snap domain.CartSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = toPersisted(snap)
	m.has = true
	return nil
}

func (m *MemoryMirror) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = persistedState{}
	m.has = false
	return nil
}
