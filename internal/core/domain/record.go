package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

var (
	ErrInvalidRecord = errors.New("invalid completion record data")
)

// CompletedAt must fall in [MinRecordYear, MaxRecordYear).
const (
	MinRecordYear = 1970
	MaxRecordYear = 2100
)

type CompletionRecord struct {
	ID     string `json:"id" db:"id"`
	ItemID string `json:"item_id" db:"item_id"`
	UserID string `json:"user_id" db:"user_id"`

	// CompletedAt decides the record's day. CreatedAt only orders records that
	// share a CompletedAt, e.g. entries back-filled for a past day.
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Detail types.JSONText `json:"detail,omitempty" db:"detail"`
}

func NewCompletionRecord(itemID, userID string, completedAt time.Time) *CompletionRecord {
	return &CompletionRecord{
		ID:          uuid.NewString(),
		ItemID:      itemID,
		UserID:      userID,
		CompletedAt: completedAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

func (r *CompletionRecord) Validate() error {
	if strings.TrimSpace(r.ItemID) == "" {
		return errors.Join(ErrInvalidRecord, errors.New("item_id is required"))
	}
	if strings.TrimSpace(r.UserID) == "" {
		return errors.Join(ErrInvalidRecord, errors.New("user_id is required"))
	}
	if r.CompletedAt.IsZero() {
		return errors.Join(ErrInvalidRecord, errors.New("completed_at is required"))
	}
	if y := r.CompletedAt.Year(); y < MinRecordYear || y >= MaxRecordYear {
		return errors.Join(ErrInvalidRecord, fmt.Errorf("completed_at year %d outside [%d, %d)", y, MinRecordYear, MaxRecordYear))
	}
	if len(r.Detail) > 0 {
		var v any
		if err := r.Detail.Unmarshal(&v); err != nil {
			return errors.Join(ErrInvalidRecord, err)
		}
	}
	return nil
}

// HasDetail reports whether the record carries a non-empty detail payload.
func (r *CompletionRecord) HasDetail() bool {
	s := strings.TrimSpace(string(r.Detail))
	return s != "" && s != "{}" && s != "null"
}

// NewerThan orders records most recent first: CompletedAt, then CreatedAt,
// then ID so equal timestamps still sort deterministically.
func (r CompletionRecord) NewerThan(other CompletionRecord) bool {
	if !r.CompletedAt.Equal(other.CompletedAt) {
		return r.CompletedAt.After(other.CompletedAt)
	}
	if !r.CreatedAt.Equal(other.CreatedAt) {
		return r.CreatedAt.After(other.CreatedAt)
	}
	return r.ID < other.ID
}
