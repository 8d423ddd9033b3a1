package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/tally"
)

type BucketSource interface {
	Bucket(ctx context.Context, userID string, window int) (*domain.DayBucket, error)
}

type StatsService struct {
	items   domain.ItemStore
	buckets BucketSource
	cal     domain.Calendar
}

func NewStatsService(items domain.ItemStore, buckets BucketSource, cal domain.Calendar) *StatsService {
	return &StatsService{
		items:   items,
		buckets: buckets,
		cal:     cal,
	}
}

type StatsInput struct {
	UserID string
	Window int
}

// GetReport computes the user's statistics plus a per-item breakdown over the
// same bucket.
func (s *StatsService) GetReport(ctx context.Context, input StatsInput) (*domain.Report, error) {
	items, err := s.items.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	bucket, err := s.buckets.Bucket(ctx, input.UserID, input.Window)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		UserID:     input.UserID,
		Statistics: tally.ComputeStatistics(s.cal, bucket, items),
		Items:      make([]domain.ItemReport, 0, len(items)),
	}

	streaks := make(map[string]domain.ItemStreak, len(report.Statistics.ItemStreaks))
	for _, st := range report.Statistics.ItemStreaks {
		streaks[st.ItemID] = st
	}

	days := bucket.Days()
	for _, item := range items {
		ir := domain.ItemReport{
			ItemID:        item.ID,
			Name:          item.Name,
			Color:         item.Color,
			Unit:          item.Unit,
			Goal:          item.Goal(),
			Archived:      item.IsArchived(),
			DailyProgress: make([]int, 0, len(days)),
			CurrentStreak: streaks[item.ID].Current,
			BestStreak:    streaks[item.ID].Best,
		}

		goaled := 0
		for _, day := range days {
			n := bucket.CountForItem(day, item.ID)
			ir.TotalRecords += n
			ir.DailyProgress = append(ir.DailyProgress, n)

			if !tally.ActiveOn(s.cal, item, day) {
				continue
			}
			status := tally.Classify(item, day, bucket.RecordsForItem(day, item.ID))
			if !status.IsGoaled() {
				continue
			}
			goaled++
			if status.IsComplete() {
				ir.DaysCompleted++
			}
		}
		if goaled > 0 {
			ir.CompletionRate = domain.DefinedRatio(float64(ir.DaysCompleted) / float64(goaled))
		}

		report.Items = append(report.Items, ir)
	}

	return report, nil
}
