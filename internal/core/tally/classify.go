package tally

import (
	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

// Classify derives the status of item on day from the records logged for it.
// Records of other items are ignored.
func Classify(item *domain.TrackedItem, day domain.DayKey, records []domain.CompletionRecord) domain.CompletionStatus {
	goal := item.Goal()
	if goal <= 0 {
		return domain.NotGoaled
	}
	// a goal never applies retroactively to days before the item existed
	if item.CreationDay != "" && day.Before(item.CreationDay) {
		return domain.NotGoaled
	}

	count := 0
	for _, r := range records {
		if r.ItemID == item.ID {
			count++
		}
	}

	return StatusFor(count, goal)
}

// StatusFor maps a record count against a positive goal.
func StatusFor(count, goal int) domain.CompletionStatus {
	switch {
	case count >= goal:
		return domain.Complete(count, goal)
	case count > 0:
		return domain.PartiallyComplete(count, goal)
	default:
		return domain.Incomplete
	}
}

// ActiveOn reports whether item takes part in computations for day. Archived
// items keep their history up to the archive day and drop out from then on.
func ActiveOn(cal domain.Calendar, item *domain.TrackedItem, day domain.DayKey) bool {
	if item.ArchivedAt == nil {
		return true
	}
	return day.Before(cal.Key(*item.ArchivedAt))
}

// ClassifyDay returns the status of every item active on day, in input order.
func ClassifyDay(cal domain.Calendar, items []*domain.TrackedItem, bucket *domain.DayBucket, day domain.DayKey) []domain.ItemStatus {
	out := make([]domain.ItemStatus, 0, len(items))
	for _, item := range items {
		if !ActiveOn(cal, item, day) {
			continue
		}
		out = append(out, domain.ItemStatus{
			ItemID: item.ID,
			Name:   item.Name,
			Status: Classify(item, day, bucket.RecordsForItem(day, item.ID)),
		})
	}
	return out
}

// DayProgress counts goaled items and how many of them are complete on day.
// Partially complete items count as not complete.
func DayProgress(cal domain.Calendar, items []*domain.TrackedItem, bucket *domain.DayBucket, day domain.DayKey) (completed, goaled int) {
	for _, st := range ClassifyDay(cal, items, bucket, day) {
		if !st.Status.IsGoaled() {
			continue
		}
		goaled++
		if st.Status.IsComplete() {
			completed++
		}
	}
	return completed, goaled
}

// Days builds the tracker grid for every day in bucket, oldest first.
func Days(cal domain.Calendar, items []*domain.TrackedItem, bucket *domain.DayBucket) []domain.DayView {
	days := bucket.Days()
	out := make([]domain.DayView, 0, len(days))
	for _, day := range days {
		statuses := ClassifyDay(cal, items, bucket, day)
		view := domain.DayView{Day: day, Records: bucket.Count(day), Items: statuses}
		for _, st := range statuses {
			if st.Status.IsGoaled() {
				view.Goaled++
				if st.Status.IsComplete() {
					view.Completed++
				}
			}
		}
		out = append(out, view)
	}
	return out
}
