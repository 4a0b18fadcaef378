package transactions

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	seq int64
	tx  Transaction
}

// MemoryStore keeps transactions in process memory. It backs the service when
// no database is configured and is used throughout the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Record(ctx context.Context, t *Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	t.CreatedAt = m.now()

	m.seq++
	m.entries[t.ID] = &memoryEntry{seq: m.seq, tx: clone(t)}
	return t.ID, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status) (*Transaction, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.tx.Status = status
	e.tx.CompletedAt = nil
	if status.Terminal() {
		now := m.now()
		e.tx.CompletedAt = &now
	}
	out := clone(&e.tx)
	return &out, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(&e.tx)
	return &out, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*Transaction, error) {
	m.mu.RLock()
	entries := make([]memoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, memoryEntry{seq: e.seq, tx: clone(&e.tx)})
	}
	m.mu.RUnlock()

	slices.SortFunc(entries, func(a, b memoryEntry) int {
		if c := b.tx.CreatedAt.Compare(a.tx.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	out := make([]*Transaction, len(entries))
	for i := range entries {
		out[i] = &entries[i].tx
	}
	return out, nil
}

func clone(t *Transaction) Transaction {
	c := *t
	c.GatewayResponse = slices.Clone(t.GatewayResponse)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return c
}
