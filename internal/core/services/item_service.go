package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
)

type ItemService struct {
	repo domain.ItemStore
	cal  domain.Calendar
	bus  events.Publisher
	now  func() time.Time
}

func NewItemService(repo domain.ItemStore, cal domain.Calendar, bus events.Publisher) *ItemService {
	return &ItemService{
		repo: repo,
		cal:  cal,
		bus:  bus,
		now:  time.Now,
	}
}

type CreateItemInput struct {
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	Type        string
	Unit        string
	GoalPerDay  *int
}

// UpdateItemInput replaces the editable fields. Empty strings keep the stored
// value, a nil GoalPerDay keeps the stored goal.
type UpdateItemInput struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	Type        string
	Unit        string
	GoalPerDay  *int
	Version     int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *ItemService) Create(ctx context.Context, input CreateItemInput) (*domain.TrackedItem, error) {
	item, err := domain.NewTrackedItem(input.UserID, domain.ItemParams{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		Type:        input.Type,
		Unit:        input.Unit,
		GoalPerDay:  input.GoalPerDay,
	}, s.cal, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	item.SortOrder = len(existing)

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.publish(events.ItemChanged, item)
	return item, nil
}

func (s *ItemService) GetByID(ctx context.Context, id string, userID string) (*domain.TrackedItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

// List returns the user's items ordered by SortOrder. Archived items are only
// included when asked for.
func (s *ItemService) List(ctx context.Context, userID string, includeArchived bool) ([]*domain.TrackedItem, error) {
	items, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.TrackedItem, 0, len(items))
	for _, item := range items {
		if item.IsArchived() && !includeArchived {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (s *ItemService) Update(ctx context.Context, input UpdateItemInput) (*domain.TrackedItem, error) {
	item, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && item.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrItemConflict, input.Version, item.Version)
	}

	goal := item.GoalPerDay
	if input.GoalPerDay != nil {
		goal = input.GoalPerDay
	}

	err = item.Update(domain.ItemParams{
		Name:        mergeString(input.Name, item.Name),
		Description: mergeString(input.Description, item.Description),
		Color:       mergeString(input.Color, item.Color),
		Icon:        mergeString(input.Icon, item.Icon),
		Type:        mergeString(input.Type, item.Type),
		Unit:        mergeString(input.Unit, item.Unit),
		GoalPerDay:  goal,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publish(events.ItemChanged, item)
	return item, nil
}

func (s *ItemService) Reorder(ctx context.Context, id string, userID string, order int) (*domain.TrackedItem, error) {
	item, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := item.ChangePosition(order); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publish(events.ItemChanged, item)
	return item, nil
}

// Archive hides the item from the archive day on. Its history stays.
func (s *ItemService) Archive(ctx context.Context, id string, userID string) (*domain.TrackedItem, error) {
	item, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if item.IsArchived() {
		return item, nil
	}

	item.Archive(s.now())
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publish(events.ItemChanged, item)
	return item, nil
}

func (s *ItemService) Restore(ctx context.Context, id string, userID string) (*domain.TrackedItem, error) {
	item, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !item.IsArchived() {
		return item, nil
	}

	item.Restore()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publish(events.ItemChanged, item)
	return item, nil
}

// Delete removes the item for good, records included.
func (s *ItemService) Delete(ctx context.Context, id string, userID string) error {
	item, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(events.ItemDestroyed, item)
	return nil
}

func (s *ItemService) publish(kind events.Kind, item *domain.TrackedItem) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Changed{Kind: kind, UserID: item.UserID, ItemID: item.ID})
}
