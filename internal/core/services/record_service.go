package services

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
)

// CellLocker serializes writes on one (item, day) cell. *toggle.Executor
// implements it.
type CellLocker interface {
	LockCell(itemID string, day domain.DayKey) (unlock func())
}

type nopLocker struct{}

func (nopLocker) LockCell(string, domain.DayKey) func() { return func() {} }

// RecordService manages records directly, e.g. back-filling a past day.
// Taps on the tracker grid go through the toggle executor instead; both take
// the same cell lock once SetCellLocker is called.
type RecordService struct {
	repo  domain.RecordStore
	items domain.ItemStore
	cal   domain.Calendar
	bus   events.Publisher
	locks CellLocker
}

func NewRecordService(repo domain.RecordStore, items domain.ItemStore, cal domain.Calendar, bus events.Publisher) *RecordService {
	return &RecordService{
		repo:  repo,
		items: items,
		cal:   cal,
		bus:   bus,
		locks: nopLocker{},
	}
}

func (s *RecordService) SetCellLocker(l CellLocker) {
	if l != nil {
		s.locks = l
	}
}

type CreateRecordInput struct {
	ItemID      string
	UserID      string
	CompletedAt time.Time
	Detail      types.JSONText
}

type UpdateRecordInput struct {
	ID          string
	UserID      string
	CompletedAt *time.Time
	Detail      types.JSONText
}

func (s *RecordService) Create(ctx context.Context, input CreateRecordInput) (*domain.CompletionRecord, error) {
	record := domain.NewCompletionRecord(input.ItemID, input.UserID, input.CompletedAt)
	record.Detail = input.Detail

	if err := record.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, record.ItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != record.UserID {
		return nil, domain.ErrUnauthorized
	}
	if item.IsArchived() {
		return nil, domain.ErrItemArchived
	}

	unlock := s.locks.LockCell(record.ItemID, s.cal.Key(record.CompletedAt))
	defer unlock()

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.publish(events.RecordCreated, record)
	return record, nil
}

func (s *RecordService) GetByID(ctx context.Context, id string, userID string) (*domain.CompletionRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return record, nil
}

// ListByItemID returns the item's records between from and to inclusive,
// most recent first. Empty bounds are open.
func (s *RecordService) ListByItemID(ctx context.Context, itemID string, userID string, from, to domain.DayKey) ([]domain.CompletionRecord, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	records, err := s.repo.ListByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CompletionRecord, 0, len(records))
	for _, r := range records {
		day := s.cal.Key(r.CompletedAt)
		if from != "" && day.Before(from) {
			continue
		}
		if to != "" && day.After(to) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NewerThan(out[j])
	})
	return out, nil
}

func (s *RecordService) Update(ctx context.Context, input UpdateRecordInput) (*domain.CompletionRecord, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	previous := *existing

	if input.CompletedAt != nil {
		existing.CompletedAt = input.CompletedAt.UTC()
	}
	if input.Detail != nil {
		existing.Detail = input.Detail
	}

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	oldDay, newDay := s.cal.Key(previous.CompletedAt), s.cal.Key(existing.CompletedAt)
	first, second := oldDay, newDay
	if second < first {
		first, second = second, first
	}
	unlockFirst := s.locks.LockCell(existing.ItemID, first)
	defer unlockFirst()
	if second != first {
		unlockSecond := s.locks.LockCell(existing.ItemID, second)
		defer unlockSecond()
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.publish(events.RecordUpdated, &previous)
	if oldDay != newDay {
		s.publish(events.RecordUpdated, existing)
	}
	return existing, nil
}

func (s *RecordService) Delete(ctx context.Context, id string, userID string) error {
	record, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	unlock := s.locks.LockCell(record.ItemID, s.cal.Key(record.CompletedAt))
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(events.RecordDestroyed, record)
	return nil
}

func (s *RecordService) publish(kind events.Kind, r *domain.CompletionRecord) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Changed{
		Kind:   kind,
		UserID: r.UserID,
		ItemID: r.ItemID,
		Day:    s.cal.Key(r.CompletedAt),
	})
}
