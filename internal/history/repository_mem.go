package history

import (
	"context"
	"sync"
)

type memRepo struct {
	mu       sync.Mutex
	hands    map[string][]HandRecord    // session -> records
	shuffles map[string][]ShuffleRecord // session -> records
}

func NewMemoryRepo() Repo {
	return &memRepo{
		hands:    make(map[string][]HandRecord),
		shuffles: make(map[string][]ShuffleRecord),
	}
}

func (m *memRepo) SaveHand(ctx context.Context, rec HandRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands[rec.SessionID] = append(m.hands[rec.SessionID], rec)
	return nil
}

func (m *memRepo) SaveShuffle(ctx context.Context, rec ShuffleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shuffles[rec.SessionID] = append(m.shuffles[rec.SessionID], rec)
	return nil
}

func (m *memRepo) Hands(ctx context.Context, session string, limit int) ([]HandRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]HandRecord(nil), tail(m.hands[session], limit)...), nil
}

func (m *memRepo) Shuffles(ctx context.Context, session string) ([]ShuffleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ShuffleRecord(nil), m.shuffles[session]...), nil
}

func (m *memRepo) DeleteSession(ctx context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hands, session)
	delete(m.shuffles, session)
	return nil
}
