package cartsync

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Add(ctx context.Context, listingID string, quantity int) error {
	return m.Called(ctx, listingID, quantity).Error(0)
}

func (m *MockGateway) Fetch(ctx context.Context) (State, error) {
	args := m.Called(ctx)
	return args.Get(0).(State), args.Error(1)
}

func (m *MockGateway) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	return m.Called(ctx, cartItemID, quantity).Error(0)
}

func (m *MockGateway) Remove(ctx context.Context, cartItemID string) error {
	return m.Called(ctx, cartItemID).Error(0)
}

func (m *MockGateway) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) SetSelected(ctx context.Context, cartItemID string, selected bool) error {
	return m.Called(ctx, cartItemID, selected).Error(0)
}

type memoryStore struct {
	mu      sync.Mutex
	items   []LineItem
	history [][]LineItem
	saves   int
	cleared int
}

func (s *memoryStore) Load() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *memoryStore) Save(items []LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]LineItem, len(items))
	copy(s.items, items)
	s.history = append(s.history, s.items)
	s.saves++
	return nil
}

func (s *memoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.cleared++
	return nil
}

func (s *memoryStore) snapshot() []LineItem {
	return s.Load()
}
