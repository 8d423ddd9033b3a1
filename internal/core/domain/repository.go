package domain

import (
	"context"
	"errors"
)

var (
	ErrItemNotFound   = errors.New("tracked item not found")
	ErrItemConflict   = errors.New("tracked item version conflict")
	ErrRecordNotFound = errors.New("completion record not found")
	ErrUnauthorized   = errors.New("resource belongs to another user")

	// ErrStoreFailure marks an error coming out of persistence. Callers decide
	// whether to retry; nothing in the core does.
	ErrStoreFailure = errors.New("store failure")
)

type ItemStore interface {
	// Create persists a new item definition.
	Create(ctx context.Context, item *TrackedItem) error

	// GetByID retrieves an item by its unique identifier.
	GetByID(ctx context.Context, id string) (*TrackedItem, error)

	// ListByUserID retrieves every item of a user, archived ones included.
	ListByUserID(ctx context.Context, userID string) ([]*TrackedItem, error)

	// Update modifies an existing item.
	// Implementations must check Version to prevent lost updates.
	Update(ctx context.Context, item *TrackedItem) error

	// Delete permanently removes an item. Its records go with it.
	Delete(ctx context.Context, id string) error

	UpdateStreaks(ctx context.Context, id string, current, best int) error
}

type RecordStore interface {
	Create(ctx context.Context, record *CompletionRecord) error

	GetByID(ctx context.Context, id string) (*CompletionRecord, error)

	// ListByUserID is the read-all used to build day buckets.
	ListByUserID(ctx context.Context, userID string) ([]CompletionRecord, error)

	// ListByItemID returns every record of one item.
	ListByItemID(ctx context.Context, itemID string) ([]CompletionRecord, error)

	Update(ctx context.Context, record *CompletionRecord) error

	Delete(ctx context.Context, id string) error
}

// StoreError wraps err so that errors.Is matches both ErrStoreFailure and err.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreFailure) {
		return err
	}
	return &storeError{op: op, err: err}
}

type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string {
	return ErrStoreFailure.Error() + ": " + e.op + ": " + e.err.Error()
}

func (e *storeError) Unwrap() []error {
	return []error{ErrStoreFailure, e.err}
}
