package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrItemNameEmpty     = errors.New("item name cannot be empty")
	ErrItemNameTooLong   = errors.New("item name is too long (max 100 chars)")
	ErrItemDescTooLong   = errors.New("item description is too long (max 500 chars)")
	ErrItemInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor      = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidGoal       = errors.New("goal per day cannot be negative")
	ErrItemArchived      = errors.New("cannot update an archived item")
	ErrInvalidItemType   = errors.New("invalid item type (must be boolean, numeric, or timer)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	ItemTypeBoolean = "boolean"
	ItemTypeNumeric = "numeric"
	ItemTypeTimer   = "timer"
	DefaultIcon     = "default_icon"
	MaxNameLen      = 100
	MaxDescLen      = 500
)

type TrackedItem struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	Color       string     `json:"color" db:"color"`
	Icon        string     `json:"icon" db:"icon"`
	SortOrder   int        `json:"sort_order" db:"sort_order"`
	Type        string     `json:"type" db:"type"`
	Unit        string     `json:"unit" db:"unit"`
	GoalPerDay  *int       `json:"goal_per_day,omitempty" db:"goal_per_day"`
	CreationDay DayKey     `json:"creation_day" db:"creation_day"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty" db:"archived_at"`

	CurrentStreak int `json:"current_streak" db:"current_streak"`
	BestStreak    int `json:"best_streak" db:"best_streak"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type ItemParams struct {
	Name        string
	Description string
	Color       string
	Icon        string
	Type        string
	Unit        string
	GoalPerDay  *int
}

func validateItem(p ItemParams) (ItemParams, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)

	if p.Name == "" {
		return p, ErrItemNameEmpty
	}
	if len(p.Name) > MaxNameLen {
		return p, ErrItemNameTooLong
	}
	if len(p.Description) > MaxDescLen {
		return p, ErrItemDescTooLong
	}

	if p.Type == "" {
		p.Type = ItemTypeBoolean
	}
	switch p.Type {
	case ItemTypeBoolean, ItemTypeNumeric, ItemTypeTimer:
	default:
		return p, ErrInvalidItemType
	}

	if p.GoalPerDay != nil {
		if *p.GoalPerDay < 0 {
			return p, ErrInvalidGoal
		}
		goal := *p.GoalPerDay
		p.GoalPerDay = &goal
	}

	if p.Color != "" && !colorRegex.MatchString(p.Color) {
		return p, ErrInvalidColor
	}
	if p.Icon == "" {
		p.Icon = DefaultIcon
	}

	return p, nil
}

// NewTrackedItem builds an item whose goal starts applying on the creation day
// of now in cal.
func NewTrackedItem(userID string, p ItemParams, cal Calendar, now time.Time) (*TrackedItem, error) {
	if userID == "" {
		return nil, ErrItemInvalidUserID
	}

	clean, err := validateItem(p)
	if err != nil {
		return nil, err
	}

	now = now.UTC()

	return &TrackedItem{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        clean.Name,
		Description: clean.Description,
		Color:       clean.Color,
		Icon:        clean.Icon,
		Type:        clean.Type,
		Unit:        clean.Unit,
		GoalPerDay:  clean.GoalPerDay,
		CreationDay: cal.Key(now),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (i *TrackedItem) Update(p ItemParams) error {
	if i.IsArchived() {
		return ErrItemArchived
	}

	clean, err := validateItem(p)
	if err != nil {
		return err
	}

	i.Name = clean.Name
	i.Description = clean.Description
	i.Color = clean.Color
	i.Icon = clean.Icon
	i.Type = clean.Type
	i.Unit = clean.Unit
	i.GoalPerDay = clean.GoalPerDay
	i.UpdatedAt = time.Now().UTC()

	return nil
}

// Goal returns the daily goal, 0 when the item has none.
func (i *TrackedItem) Goal() int {
	if i.GoalPerDay == nil {
		return 0
	}
	return *i.GoalPerDay
}

// RequiresDetail reports whether completing the item needs a structured value.
func (i *TrackedItem) RequiresDetail() bool {
	return i.Type == ItemTypeNumeric || i.Type == ItemTypeTimer
}

func (i *TrackedItem) IsArchived() bool {
	return i.ArchivedAt != nil
}

func (i *TrackedItem) ChangePosition(newOrder int) error {
	if i.IsArchived() {
		return ErrItemArchived
	}

	i.SortOrder = newOrder
	i.UpdatedAt = time.Now().UTC()
	return nil
}

func (i *TrackedItem) Archive(now time.Time) {
	if i.ArchivedAt != nil {
		return
	}

	now = now.UTC()
	i.ArchivedAt = &now
	i.UpdatedAt = now
}

func (i *TrackedItem) Restore() {
	if i.ArchivedAt == nil {
		return
	}
	i.ArchivedAt = nil
	i.UpdatedAt = time.Now().UTC()
}

func (i *TrackedItem) UpdateStreak(current, best int) {
	i.CurrentStreak = current
	i.BestStreak = best
}
