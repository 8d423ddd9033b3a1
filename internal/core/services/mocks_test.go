package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
)

type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) Create(ctx context.Context, item *domain.TrackedItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemStore) GetByID(ctx context.Context, id string) (*domain.TrackedItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackedItem), args.Error(1)
}

func (m *MockItemStore) ListByUserID(ctx context.Context, userID string) ([]*domain.TrackedItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrackedItem), args.Error(1)
}

func (m *MockItemStore) Update(ctx context.Context, item *domain.TrackedItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemStore) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	return m.Called(ctx, id, current, best).Error(0)
}

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Create(ctx context.Context, r *domain.CompletionRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecordStore) GetByID(ctx context.Context, id string) (*domain.CompletionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletionRecord), args.Error(1)
}

func (m *MockRecordStore) ListByUserID(ctx context.Context, userID string) ([]domain.CompletionRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletionRecord), args.Error(1)
}

func (m *MockRecordStore) ListByItemID(ctx context.Context, itemID string) ([]domain.CompletionRecord, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletionRecord), args.Error(1)
}

func (m *MockRecordStore) Update(ctx context.Context, r *domain.CompletionRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecordStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Changed
}

func (b *recordingBus) Publish(ev events.Changed) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) kinds() []events.Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Kind, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Kind)
	}
	return out
}

func intPtr(v int) *int { return &v }
