package domain

import "errors"

var (
	// ErrAmbiguousUncomplete: the day has several records and undoing would
	// have to guess which one to drop.
	ErrAmbiguousUncomplete = errors.New("more than one record exists for this day")

	// ErrDetailedRecordUncompleteRejected: records carrying structured detail
	// are only removed explicitly.
	ErrDetailedRecordUncompleteRejected = errors.New("cannot uncomplete a record with structured detail")

	ErrRecordNotFoundForDay = errors.New("no record found for this item and day")
	ErrPendingNotFound      = errors.New("pending detail entry not found")
)

// ItemStatus pairs an item with its status on one day.
type ItemStatus struct {
	ItemID string           `json:"item_id"`
	Name   string           `json:"name"`
	Status CompletionStatus `json:"status"`
}

// DayView is one day of the tracker grid.
type DayView struct {
	Day       DayKey       `json:"day"`
	Records   int          `json:"records"`
	Completed int          `json:"completed"`
	Goaled    int          `json:"goaled"`
	Items     []ItemStatus `json:"items"`
}
