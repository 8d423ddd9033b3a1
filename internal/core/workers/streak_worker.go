package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
	"github.com/comitanigiacomo/kanso-tally/internal/core/tally"
)

const DefaultQueueSize = 100

type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TrackedItem, error)
	UpdateStreaks(ctx context.Context, id string, current, best int) error
}

type RecordRepository interface {
	ListByItemID(ctx context.Context, itemID string) ([]domain.CompletionRecord, error)
}

// JobRecorder counts processed jobs by outcome: "updated", "unchanged",
// "failed" or "dropped".
type JobRecorder interface {
	ObserveStreakJob(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStreakJob(string) {}

type StreakJob struct {
	ItemID string
}

// StreakWorker keeps the cached streak columns of items up to date. Jobs come
// from record Changed events and are processed one at a time.
type StreakWorker struct {
	itemRepo   ItemRepository
	recordRepo RecordRepository
	cal        domain.Calendar
	logger     *slog.Logger
	recorder   JobRecorder
	now        func() time.Time
	jobs       chan StreakJob
}

func NewStreakWorker(iRepo ItemRepository, rRepo RecordRepository, cal domain.Calendar, queueSize int, logger *slog.Logger) *StreakWorker {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreakWorker{
		itemRepo:   iRepo,
		recordRepo: rRepo,
		cal:        cal,
		logger:     logger.With("component", "streak_worker"),
		recorder:   nopRecorder{},
		now:        time.Now,
		jobs:       make(chan StreakJob, queueSize),
	}
}

func (w *StreakWorker) SetRecorder(r JobRecorder) {
	if r != nil {
		w.recorder = r
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("streak worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("streak worker shutting down")
				return
			}
		}
	}()
}

// Enqueue never blocks. A full queue drops the job.
func (w *StreakWorker) Enqueue(itemID string) {
	select {
	case w.jobs <- StreakJob{ItemID: itemID}:
	default:
		w.recorder.ObserveStreakJob("dropped")
		w.logger.Warn("queue full, dropping job", "item_id", itemID)
	}
}

// OnChanged is the bus subscription. Only record changes move streaks.
func (w *StreakWorker) OnChanged(ev events.Changed) {
	switch ev.Kind {
	case events.RecordCreated, events.RecordUpdated, events.RecordDestroyed:
		w.Enqueue(ev.ItemID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	item, err := w.itemRepo.GetByID(ctx, job.ItemID)
	if err != nil {
		w.recorder.ObserveStreakJob("failed")
		w.logger.Error("fetching item", "item_id", job.ItemID, "error", err)
		return
	}

	records, err := w.recordRepo.ListByItemID(ctx, job.ItemID)
	if err != nil {
		w.recorder.ObserveStreakJob("failed")
		w.logger.Error("fetching records", "item_id", job.ItemID, "error", err)
		return
	}

	current, best := calculateStreaks(w.cal, item.ID, records, w.cal.Key(w.now()))

	if item.CurrentStreak == current && item.BestStreak == best {
		w.recorder.ObserveStreakJob("unchanged")
		return
	}
	if err := w.itemRepo.UpdateStreaks(ctx, item.ID, current, best); err != nil {
		w.recorder.ObserveStreakJob("failed")
		w.logger.Error("updating streaks", "item_id", item.ID, "error", err)
		return
	}
	w.recorder.ObserveStreakJob("updated")
	w.logger.Debug("streaks updated", "item_id", item.ID, "current", current, "best", best)
}

func calculateStreaks(cal domain.Calendar, itemID string, records []domain.CompletionRecord, today domain.DayKey) (int, int) {
	if len(records) == 0 {
		return 0, 0
	}
	bucket := tally.Bucket(cal, records, today, 1)
	return tally.ItemStreaks(bucket, itemID)
}
