package index

import (
	"context"
	"sync"

	"github.com/jeffreytso/contourdex/model"
)

// Memory keeps entries in a slice. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []model.CorpusEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Insert(_ context.Context, entry model.CorpusEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *Memory) Query(ctx context.Context, pattern string, limit int) ([]model.CorpusEntry, error) {
	res := []model.CorpusEntry{}
	if Empty(pattern, limit) {
		return res, nil
	}
	needle := Sanitize(pattern)

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if Matches(e.Contour, needle) {
			res = append(res, e)
			if len(res) == limit {
				break
			}
		}
	}
	return res, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *Memory) Close() error {
	return nil
}
