package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"hcp-crm/internal/interaction"
)

// Memory keeps records in process memory.
type Memory struct {
	mu      sync.RWMutex
	records []interaction.Record
	nextID  int64
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, now: time.Now}
}

func (m *Memory) Create(ctx context.Context, rec *interaction.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := prepare(rec, m.now()); err != nil {
		return err
	}
	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, *rec)
	return nil
}

func (m *Memory) List(ctx context.Context) ([]interaction.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]interaction.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id int64) (*interaction.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.records {
		if m.records[i].ID == id {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByHCPName(ctx context.Context, name string) ([]interaction.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	out := []interaction.Record{}
	for _, r := range m.records {
		if strings.Contains(strings.ToLower(r.HCPName), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) MostRecent(ctx context.Context) (*interaction.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return nil, ErrNotFound
	}
	rec := m.records[len(m.records)-1]
	return &rec, nil
}

func (m *Memory) Close() error { return nil }
