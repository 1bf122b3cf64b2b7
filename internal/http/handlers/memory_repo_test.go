package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"dcatracker/internal/domain"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
	err   error
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]domain.User{}}
}

func (m *memUsers) Ensure(_ context.Context, u domain.User) (*domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	if existing, ok := m.users[u.ID]; ok {
		return &existing, false, nil
	}
	u.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.users[u.ID] = u
	return &u, true, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

type memContributions struct {
	mu    sync.Mutex
	items map[string]domain.Contribution
	err   error
}

func newMemContributions() *memContributions {
	return &memContributions{items: map[string]domain.Contribution{}}
}

func (m *memContributions) ListByOwner(_ context.Context, ownerID string) ([]domain.Contribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Contribution{}
	for _, c := range m.items {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memContributions) Create(_ context.Context, c domain.Contribution) (*domain.Contribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.items[c.ID] = c
	return &c, nil
}

func (m *memContributions) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.UserID != ownerID {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memContributions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
