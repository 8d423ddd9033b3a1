package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx/types"
	"golang.org/x/sync/singleflight"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
	"github.com/comitanigiacomo/kanso-tally/internal/core/tally"
	"github.com/comitanigiacomo/kanso-tally/internal/core/toggle"
)

// TrackerView is the tracker grid of one user.
type TrackerView struct {
	Today   domain.DayKey           `json:"today"`
	Days    []domain.DayView        `json:"days"`
	Pending []*toggle.PendingDetail `json:"pending"`
}

type snapshot struct {
	day    domain.DayKey
	window int
	bucket *domain.DayBucket
}

// TrackerService serves day buckets out of a per-user snapshot. Snapshots are
// dropped on Changed events and rebuilt on the next read.
type TrackerService struct {
	cal       domain.Calendar
	items     domain.ItemStore
	records   domain.RecordStore
	exec      *toggle.Executor
	minWindow int
	logger    *slog.Logger
	now       func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	snapshots map[string]snapshot
	gens      map[string]uint64
}

func NewTrackerService(cal domain.Calendar, items domain.ItemStore, records domain.RecordStore, exec *toggle.Executor, minWindow int, logger *slog.Logger) *TrackerService {
	if minWindow < 1 {
		minWindow = tally.DefaultMinWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackerService{
		cal:       cal,
		items:     items,
		records:   records,
		exec:      exec,
		minWindow: minWindow,
		logger:    logger,
		now:       time.Now,
		snapshots: make(map[string]snapshot),
		gens:      make(map[string]uint64),
	}
}

func (s *TrackerService) Today() domain.DayKey {
	return s.cal.Key(s.now())
}

// Bucket returns the user's day bucket ending today. window <= 0 uses the
// configured minimum window.
func (s *TrackerService) Bucket(ctx context.Context, userID string, window int) (*domain.DayBucket, error) {
	if window <= 0 {
		window = s.minWindow
	}
	today := s.Today()

	s.mu.Lock()
	snap, ok := s.snapshots[userID]
	gen := s.gens[userID]
	s.mu.Unlock()
	if ok && snap.day == today && snap.window == window {
		return snap.bucket, nil
	}

	key := fmt.Sprintf("%s|%s|%d|%d", userID, today, window, gen)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		records, err := s.records.ListByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		bucket := tally.Bucket(s.cal, records, today, window)

		s.mu.Lock()
		if s.gens[userID] == gen {
			s.snapshots[userID] = snapshot{day: today, window: window, bucket: bucket}
		}
		s.mu.Unlock()

		s.logger.Debug("tracker snapshot built", "user_id", userID, "days", bucket.Len(), "records", len(records))
		return bucket, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DayBucket), nil
}

// OnChanged keeps snapshots in line with the stores. A destroyed item is cut
// out of the cached bucket; anything else drops the snapshot.
func (s *TrackerService) OnChanged(ev events.Changed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[ev.UserID]++

	snap, ok := s.snapshots[ev.UserID]
	if !ok {
		return
	}
	if ev.Kind == events.ItemDestroyed {
		snap.bucket = snap.bucket.Without(ev.ItemID)
		s.snapshots[ev.UserID] = snap
		return
	}
	delete(s.snapshots, ev.UserID)
}

// Days returns the tracker grid. Cells with open detail flows show their
// optimistic status.
func (s *TrackerService) Days(ctx context.Context, userID string, window int) (*TrackerView, error) {
	items, err := s.userItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	bucket, err := s.Bucket(ctx, userID, window)
	if err != nil {
		return nil, err
	}

	view := &TrackerView{
		Today:   s.Today(),
		Days:    tally.Days(s.cal, items, bucket),
		Pending: []*toggle.PendingDetail{},
	}

	if s.exec != nil {
		view.Pending = s.exec.Pending(userID)
		applyPending(view.Days, items, s.exec.PendingCounts(userID))
	}
	return view, nil
}

func applyPending(days []domain.DayView, items []*domain.TrackedItem, pending map[string]int) {
	if len(pending) == 0 {
		return
	}
	byID := make(map[string]*domain.TrackedItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for d := range days {
		view := &days[d]
		changed := false
		for i := range view.Items {
			st := &view.Items[i]
			n := pending[toggle.CellKey(st.ItemID, view.Day)]
			if n == 0 || !st.Status.IsGoaled() {
				continue
			}
			st.Status = tally.StatusFor(st.Status.Count+n, byID[st.ItemID].Goal())
			changed = true
		}
		if !changed {
			continue
		}
		view.Completed = 0
		for _, st := range view.Items {
			if st.Status.IsComplete() {
				view.Completed++
			}
		}
	}
}

func (s *TrackerService) Statistics(ctx context.Context, userID string, window int) (domain.Statistics, error) {
	items, err := s.userItems(ctx, userID)
	if err != nil {
		return domain.Statistics{}, err
	}
	bucket, err := s.Bucket(ctx, userID, window)
	if err != nil {
		return domain.Statistics{}, err
	}
	return tally.ComputeStatistics(s.cal, bucket, items), nil
}

// Toggle taps the cell of itemID on day; an empty day means today.
func (s *TrackerService) Toggle(ctx context.Context, userID, itemID string, day domain.DayKey, override bool) (toggle.Result, error) {
	return s.exec.Toggle(ctx, userID, itemID, s.dayOrToday(day), override)
}

func (s *TrackerService) DestroyLast(ctx context.Context, userID, itemID string, day domain.DayKey) (toggle.Transition, error) {
	return s.exec.DestroyLast(ctx, userID, itemID, s.dayOrToday(day))
}

func (s *TrackerService) SubmitDetail(ctx context.Context, userID, pendingID string, detail types.JSONText) (*domain.CompletionRecord, error) {
	return s.exec.SubmitDetail(ctx, userID, pendingID, detail)
}

func (s *TrackerService) CancelDetail(ctx context.Context, userID, pendingID string) (domain.CompletionStatus, error) {
	return s.exec.CancelDetail(ctx, userID, pendingID)
}

func (s *TrackerService) dayOrToday(day domain.DayKey) domain.DayKey {
	if day == "" {
		return s.Today()
	}
	return day
}

func (s *TrackerService) userItems(ctx context.Context, userID string) ([]*domain.TrackedItem, error) {
	items, err := s.items.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sorted := append([]*domain.TrackedItem{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	return sorted, nil
}
