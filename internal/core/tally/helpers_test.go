package tally_test

import (
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

const today = domain.DayKey("2024-06-15")

var utcCal = domain.MustCalendar(time.UTC)

var seq int

// rec builds a record for item completed on today+offset at hour.
func rec(itemID string, offset, hour int) domain.CompletionRecord {
	seq++
	day := today.AddDays(offset).Time(time.UTC)
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
	return domain.CompletionRecord{
		ID:          fmt.Sprintf("r%03d", seq),
		ItemID:      itemID,
		UserID:      "u1",
		CompletedAt: at,
		CreatedAt:   at,
	}
}

func item(id string, goal int) *domain.TrackedItem {
	it := &domain.TrackedItem{ID: id, Name: id, CreationDay: "2000-01-01"}
	if goal > 0 {
		it.GoalPerDay = &goal
	}
	return it
}
