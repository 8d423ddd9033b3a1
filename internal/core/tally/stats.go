package tally

import (
	"sort"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

func TotalRecords(b *domain.DayBucket) int {
	total := 0
	for _, day := range b.Days() {
		total += b.Count(day)
	}
	return total
}

func TotalDays(b *domain.DayBucket) int {
	return b.Len()
}

// AveragePerDay is records per day over the whole window, Undefined for an
// empty bucket.
func AveragePerDay(b *domain.DayBucket) domain.Ratio {
	days := TotalDays(b)
	if days == 0 {
		return domain.Undefined
	}
	return domain.DefinedRatio(float64(TotalRecords(b)) / float64(days))
}

// MostCompletions returns the item among items with the most records in b.
// Equal counts go to the lexicographically smallest item ID. It returns false
// when no item has a single record.
func MostCompletions(b *domain.DayBucket, items []*domain.TrackedItem) (domain.ItemCount, bool) {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item.ID] = 0
	}
	for _, day := range b.Days() {
		for _, r := range b.Records(day) {
			if _, ok := counts[r.ItemID]; ok {
				counts[r.ItemID]++
			}
		}
	}

	var best domain.ItemCount
	for id, n := range counts {
		if n > best.Count || (n == best.Count && n > 0 && id < best.ItemID) {
			best = domain.ItemCount{ItemID: id, Count: n}
		}
	}
	if best.Count == 0 {
		return domain.ItemCount{}, false
	}
	return best, true
}

// CurrentUsageStreak counts consecutive days with any record, walking back
// from the latest day. An empty latest day yields 0 straight away.
func CurrentUsageStreak(b *domain.DayBucket) int {
	days := b.Days()
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		if b.Count(days[i]) == 0 {
			break
		}
		streak++
	}
	return streak
}

// ItemStreaks walks the bucket oldest to newest counting consecutive days on
// which itemID has a record. An empty day resets the run, except the latest
// day: not having logged today yet must not erase yesterday's streak.
func ItemStreaks(b *domain.DayBucket, itemID string) (current, best int) {
	days := b.Days()
	run := 0
	for i, day := range days {
		switch {
		case b.CountForItem(day, itemID) > 0:
			run++
		case i == len(days)-1:
			// latest day still open, keep the run
		default:
			run = 0
		}
		if run > best {
			best = run
		}
	}
	return run, best
}

// CompletionRate is the share of complete (item, day) cells over all goaled
// cells in the bucket. Undefined when nothing is goaled.
func CompletionRate(cal domain.Calendar, b *domain.DayBucket, items []*domain.TrackedItem) domain.Ratio {
	completed, goaled := 0, 0
	for _, day := range b.Days() {
		c, g := DayProgress(cal, items, b, day)
		completed += c
		goaled += g
	}
	if goaled == 0 {
		return domain.Undefined
	}
	return domain.DefinedRatio(float64(completed) / float64(goaled))
}

// ComputeStatistics bundles every aggregate over b for the given items.
func ComputeStatistics(cal domain.Calendar, b *domain.DayBucket, items []*domain.TrackedItem) domain.Statistics {
	stats := domain.Statistics{
		TotalRecords:       TotalRecords(b),
		TotalDays:          TotalDays(b),
		AveragePerDay:      AveragePerDay(b),
		CompletionRate:     CompletionRate(cal, b, items),
		CurrentUsageStreak: CurrentUsageStreak(b),
		ItemStreaks:        make([]domain.ItemStreak, 0, len(items)),
	}

	if from, ok := b.Earliest(); ok {
		stats.From = from
	}
	if to, ok := b.Latest(); ok {
		stats.To = to
	}

	if most, ok := MostCompletions(b, items); ok {
		stats.MostCompletions = &most
	}

	for _, item := range items {
		current, best := ItemStreaks(b, item.ID)
		stats.ItemStreaks = append(stats.ItemStreaks, domain.ItemStreak{
			ItemID:  item.ID,
			Current: current,
			Best:    best,
		})
	}
	sort.Slice(stats.ItemStreaks, func(i, j int) bool {
		return stats.ItemStreaks[i].ItemID < stats.ItemStreaks[j].ItemID
	})

	return stats
}
