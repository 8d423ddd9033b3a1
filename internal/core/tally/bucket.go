package tally

import (
	"sort"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

// DefaultMinWindow is the number of days a tracker view always shows.
const DefaultMinWindow = 7

// Bucket groups records by day key and pads the result so it covers at least
// minWindow days ending at currentDay.
//
// The window is extended backwards to reach the oldest record and forwards to
// reach records dated after currentDay: no record is ever left out.
func Bucket(cal domain.Calendar, records []domain.CompletionRecord, currentDay domain.DayKey, minWindow int) *domain.DayBucket {
	if minWindow < 1 {
		minWindow = 1
	}

	window := minWindow
	if len(records) > 0 {
		earliest := cal.Key(records[0].CompletedAt)
		for _, r := range records[1:] {
			if k := cal.Key(r.CompletedAt); k < earliest {
				earliest = k
			}
		}

		// today already occupies one slot, hence +1 rather than +minWindow
		if span := earliest.DaysUntil(currentDay); span >= minWindow {
			window = span + 1
		}
	}

	byDay := make(map[domain.DayKey][]domain.CompletionRecord, window)
	start := currentDay.AddDays(-(window - 1))
	for i := 0; i < window; i++ {
		byDay[start.AddDays(i)] = []domain.CompletionRecord{}
	}

	latest := currentDay
	for _, r := range records {
		day := cal.Key(r.CompletedAt)
		byDay[day] = append(byDay[day], r)
		if day > latest {
			latest = day
		}
	}

	for day := currentDay.AddDays(1); day <= latest; day = day.AddDays(1) {
		if _, ok := byDay[day]; !ok {
			byDay[day] = []domain.CompletionRecord{}
		}
	}

	for _, recs := range byDay {
		sortNewestFirst(recs)
	}

	return domain.NewDayBucket(byDay)
}

func sortNewestFirst(recs []domain.CompletionRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].NewerThan(recs[j]) })
}
