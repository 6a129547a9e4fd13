package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps configs in process memory. It is used in tests and when
// no database is configured; configs are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	configs map[uuid.UUID]*SortingConfig
	order   []uuid.UUID
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[uuid.UUID]*SortingConfig),
		now:     time.Now,
	}
}

func (m *MemoryStore) ListConfigs(_ context.Context) ([]*SortingConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*SortingConfig, 0, len(m.order))
	for _, id := range m.order {
		c := *m.configs[id]
		out = append(out, &c)
	}
	return out, nil
}

func (m *MemoryStore) GetConfig(_ context.Context, id uuid.UUID) (*SortingConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[id]
	if !ok {
		return nil, nil
	}
	c := *cfg
	return &c, nil
}

func (m *MemoryStore) CreateConfig(_ context.Context, cfg *SortingConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.configs {
		if strings.EqualFold(existing.Name, cfg.Name) {
			return fmt.Errorf("%w: %q", ErrNameTaken, cfg.Name)
		}
	}

	now := m.now().UTC()
	cfg.ID = uuid.New()
	cfg.IsActive = false
	cfg.IsDefault = false
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	c := *cfg
	m.configs[cfg.ID] = &c
	m.order = append(m.order, cfg.ID)
	return nil
}

func (m *MemoryStore) SetActiveConfig(_ context.Context, id *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != nil {
		if _, ok := m.configs[*id]; !ok {
			return false, nil
		}
	}

	now := m.now().UTC()
	for cid, cfg := range m.configs {
		active := id != nil && cid == *id
		if cfg.IsActive != active {
			cfg.IsActive = active
			cfg.UpdatedAt = now
		}
	}
	return true, nil
}

func (m *MemoryStore) DeleteConfig(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[id]
	if !ok || cfg.IsActive {
		return false, nil
	}
	delete(m.configs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryStore) Close() error { return nil }
