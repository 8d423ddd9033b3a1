package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

// The in-memory repositories back the "memory" database driver and tests.
// They hand out copies so callers never share state with the store.

type InMemoryItemRepository struct {
	store map[string]domain.TrackedItem

	// records is notified of deletes to mirror ON DELETE CASCADE.
	records *InMemoryRecordRepository

	mu sync.RWMutex
}

func NewInMemoryItemRepository(records *InMemoryRecordRepository) *InMemoryItemRepository {
	return &InMemoryItemRepository{
		store:   make(map[string]domain.TrackedItem),
		records: records,
	}
}

func (r *InMemoryItemRepository) Create(ctx context.Context, item *domain.TrackedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[item.ID]; ok {
		return domain.ErrItemConflict
	}
	if item.Version == 0 {
		item.Version = 1
	}
	r.store[item.ID] = *item
	return nil
}

func (r *InMemoryItemRepository) GetByID(ctx context.Context, id string) (*domain.TrackedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.store[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

func (r *InMemoryItemRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TrackedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*domain.TrackedItem{}
	for _, it := range r.store {
		if it.UserID == userID {
			cp := it
			items = append(items, &cp)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

func (r *InMemoryItemRepository) Update(ctx context.Context, item *domain.TrackedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[item.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if stored.Version != item.Version {
		return fmt.Errorf("%w: item %s is not at version %d", domain.ErrItemConflict, item.ID, item.Version)
	}

	item.Version++
	item.UpdatedAt = time.Now().UTC()
	item.CurrentStreak, item.BestStreak = stored.CurrentStreak, stored.BestStreak
	r.store[item.ID] = *item
	return nil
}

func (r *InMemoryItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrItemNotFound
	}

	delete(r.store, id)
	if r.records != nil {
		r.records.deleteByItem(id)
	}
	return nil
}

func (r *InMemoryItemRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.store[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	item.CurrentStreak, item.BestStreak = current, best
	r.store[id] = item
	return nil
}

type InMemoryRecordRepository struct {
	store map[string]domain.CompletionRecord

	mu sync.RWMutex
}

func NewInMemoryRecordRepository() *InMemoryRecordRepository {
	return &InMemoryRecordRepository{
		store: make(map[string]domain.CompletionRecord),
	}
}

func (r *InMemoryRecordRepository) Create(ctx context.Context, record *domain.CompletionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[record.ID] = *record
	return nil
}

func (r *InMemoryRecordRepository) GetByID(ctx context.Context, id string) (*domain.CompletionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.store[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &record, nil
}

func (r *InMemoryRecordRepository) ListByUserID(ctx context.Context, userID string) ([]domain.CompletionRecord, error) {
	return r.list(func(rec domain.CompletionRecord) bool { return rec.UserID == userID }), nil
}

func (r *InMemoryRecordRepository) ListByItemID(ctx context.Context, itemID string) ([]domain.CompletionRecord, error) {
	return r.list(func(rec domain.CompletionRecord) bool { return rec.ItemID == itemID }), nil
}

func (r *InMemoryRecordRepository) list(keep func(domain.CompletionRecord) bool) []domain.CompletionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.CompletionRecord{}
	for _, rec := range r.store {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return out
}

func (r *InMemoryRecordRepository) Update(ctx context.Context, record *domain.CompletionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[record.ID]; !ok {
		return domain.ErrRecordNotFound
	}
	r.store[record.ID] = *record
	return nil
}

func (r *InMemoryRecordRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *InMemoryRecordRepository) deleteByItem(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.store {
		if rec.ItemID == itemID {
			delete(r.store, id)
		}
	}
}

type InMemoryUserRepository struct {
	byID map[string]domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID: make(map[string]domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.byID[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}
