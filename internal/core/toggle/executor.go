package toggle

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
)

var ErrDetailRequired = errors.New("detail payload is required for this item")

// Recorder receives one observation per executor operation. outcome is one of
// "ok", "rejected" or "store_failure".
type Recorder interface {
	ObserveToggle(op, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveToggle(string, string, time.Duration) {}

type Option func(*Executor)

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(e *Executor) { e.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithPendingTTL sets how long a detail flow stays open. Non-positive values
// keep the default.
func WithPendingTTL(ttl time.Duration) Option {
	return func(e *Executor) {
		if ttl > 0 {
			e.pendingTTL = ttl
		}
	}
}

// DefaultPendingTTL bounds how long an abandoned detail flow keeps counting
// towards its cell.
const DefaultPendingTTL = 30 * time.Minute

// Result is the outcome of Executor.Toggle. Pending is set when the record
// waits for a detail-entry flow; To is then an optimistic status.
type Result struct {
	Transition
	Pending *PendingDetail `json:"pending,omitempty"`
}

// PendingDetail is an opened detail-entry flow. It settles exactly once,
// either by SubmitDetail or by a cancel.
type PendingDetail struct {
	ID       string                  `json:"id"`
	UserID   string                  `json:"user_id"`
	ItemID   string                  `json:"item_id"`
	Day      domain.DayKey           `json:"day"`
	From     domain.CompletionStatus `json:"from"`
	To       domain.CompletionStatus `json:"to"`
	OpenedAt time.Time               `json:"opened_at"`

	once   sync.Once
	settle func()
}

// Cancel rolls the optimistic status back. It reports whether this call did
// the rollback; later calls are no-ops.
func (p *PendingDetail) Cancel() bool {
	return p.claim()
}

func (p *PendingDetail) claim() bool {
	won := false
	p.once.Do(func() {
		won = true
		if p.settle != nil {
			p.settle()
		}
	})
	return won
}

// Executor applies toggle transitions to the stores. Operations on the same
// (item, day) cell never overlap.
type Executor struct {
	cal      domain.Calendar
	items    domain.ItemStore
	records  domain.RecordStore
	bus      events.Publisher
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	locks *cellLocks

	pendingMu  sync.Mutex
	pending    map[string]*PendingDetail
	pendingTTL time.Duration
}

func NewExecutor(cal domain.Calendar, items domain.ItemStore, records domain.RecordStore, bus events.Publisher, opts ...Option) *Executor {
	e := &Executor{
		cal:      cal,
		items:    items,
		records:  records,
		bus:      bus,
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
		locks:    newCellLocks(),
		pending:  make(map[string]*PendingDetail),

		pendingTTL: DefaultPendingTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Toggle advances or clears the cell of itemID on day. With override every
// record of the cell is destroyed and open detail flows are dropped.
func (e *Executor) Toggle(ctx context.Context, userID, itemID string, day domain.DayKey, override bool) (Result, error) {
	start := time.Now()
	res, err := e.toggle(ctx, userID, itemID, day, override)
	e.observe("toggle", start, err)
	if err == nil {
		e.logger.Debug("cell toggled",
			"user_id", userID, "item_id", itemID, "day", day,
			"from", res.From.String(), "to", res.To.String(), "pending", res.Pending != nil)
	}
	return res, err
}

func (e *Executor) toggle(ctx context.Context, userID, itemID string, day domain.DayKey, override bool) (Result, error) {
	item, err := e.loadItem(ctx, userID, itemID)
	if err != nil {
		return Result{}, err
	}
	if item.IsArchived() {
		return Result{}, domain.ErrItemArchived
	}

	key := CellKey(item.ID, day)
	unlock := e.locks.lock(key)
	defer unlock()

	in, err := e.cell(ctx, item, day)
	if err != nil {
		return Result{}, err
	}
	in.Override = override

	tr, err := Toggle(in)
	res := Result{Transition: tr}
	if err != nil {
		return res, err
	}

	if override {
		e.dropPending(key)
	}

	for _, cmd := range tr.Commands {
		switch cmd.Kind {
		case CreateRecord:
			_, err = e.create(ctx, e.newRecord(item, day, nil))
		case DestroyRecord:
			err = e.destroy(ctx, item, cmd)
		case RequestDetail:
			res.Pending = e.open(item, day, tr)
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// DestroyLast removes the most recent record of the cell.
func (e *Executor) DestroyLast(ctx context.Context, userID, itemID string, day domain.DayKey) (Transition, error) {
	start := time.Now()
	tr, err := e.destroyLast(ctx, userID, itemID, day)
	e.observe("destroy_last", start, err)
	return tr, err
}

func (e *Executor) destroyLast(ctx context.Context, userID, itemID string, day domain.DayKey) (Transition, error) {
	item, err := e.loadItem(ctx, userID, itemID)
	if err != nil {
		return Transition{}, err
	}

	unlock := e.locks.lock(CellKey(item.ID, day))
	defer unlock()

	in, err := e.cell(ctx, item, day)
	if err != nil {
		return Transition{}, err
	}

	tr, err := DestroyLast(in)
	if err != nil {
		return tr, err
	}
	for _, cmd := range tr.Commands {
		if err := e.destroy(ctx, item, cmd); err != nil {
			return tr, err
		}
	}
	return tr, nil
}

// SubmitDetail completes a pending flow by storing its record.
func (e *Executor) SubmitDetail(ctx context.Context, userID, pendingID string, detail types.JSONText) (*domain.CompletionRecord, error) {
	start := time.Now()
	rec, err := e.submitDetail(ctx, userID, pendingID, detail)
	e.observe("submit_detail", start, err)
	return rec, err
}

func (e *Executor) submitDetail(ctx context.Context, userID, pendingID string, detail types.JSONText) (*domain.CompletionRecord, error) {
	p, err := e.lookup(userID, pendingID)
	if err != nil {
		return nil, err
	}

	item, err := e.loadItem(ctx, userID, p.ItemID)
	if err != nil {
		return nil, err
	}

	rec := e.newRecord(item, p.Day, detail)
	if !rec.HasDetail() {
		return nil, ErrDetailRequired
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	unlock := e.locks.lock(CellKey(p.ItemID, p.Day))
	defer unlock()

	if !p.claim() {
		return nil, domain.ErrPendingNotFound
	}
	return e.create(ctx, rec)
}

// CancelDetail rolls a pending flow back and returns the cell status after the
// rollback: stored records plus the flows still open on the cell. Cancelling
// an already settled flow returns ErrPendingNotFound and changes nothing.
func (e *Executor) CancelDetail(ctx context.Context, userID, pendingID string) (domain.CompletionStatus, error) {
	start := time.Now()
	status, err := e.cancelDetail(ctx, userID, pendingID)
	e.observe("cancel_detail", start, err)
	return status, err
}

func (e *Executor) cancelDetail(ctx context.Context, userID, pendingID string) (domain.CompletionStatus, error) {
	p, err := e.lookup(userID, pendingID)
	if err != nil {
		return domain.CompletionStatus{}, err
	}

	key := CellKey(p.ItemID, p.Day)
	unlock := e.locks.lock(key)
	defer unlock()

	item, err := e.loadItem(ctx, userID, p.ItemID)
	if err != nil {
		// the flow cannot outlive its item
		if errors.Is(err, domain.ErrItemNotFound) {
			p.Cancel()
		}
		return domain.CompletionStatus{}, err
	}

	in, err := e.cell(ctx, item, p.Day)
	if err != nil {
		return domain.CompletionStatus{}, err
	}

	if !p.Cancel() {
		return domain.CompletionStatus{}, domain.ErrPendingNotFound
	}
	in.Pending = e.pendingCount(key)

	e.logger.Debug("detail cancelled", "user_id", userID, "item_id", p.ItemID, "day", p.Day)
	return CellStatus(in), nil
}

// LockCell serializes writes on one (item, day) cell with the executor's own
// operations. Callers must call unlock exactly once.
func (e *Executor) LockCell(itemID string, day domain.DayKey) (unlock func()) {
	return e.locks.lock(CellKey(itemID, day))
}

// Pending lists the open detail flows of a user, oldest first.
func (e *Executor) Pending(userID string) []*PendingDetail {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.expireLocked()

	out := make([]*PendingDetail, 0)
	for _, p := range e.pending {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PendingCounts returns, per cell key, how many detail flows of the user are
// open. Views add them to the stored count to show the optimistic status.
func (e *Executor) PendingCounts(userID string) map[string]int {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.expireLocked()

	out := make(map[string]int)
	for _, p := range e.pending {
		if p.UserID == userID {
			out[CellKey(p.ItemID, p.Day)]++
		}
	}
	return out
}

func (e *Executor) loadItem(ctx context.Context, userID, itemID string) (*domain.TrackedItem, error) {
	item, err := e.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
		return nil, domain.StoreError("get item", err)
	}
	if item.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return item, nil
}

func (e *Executor) cell(ctx context.Context, item *domain.TrackedItem, day domain.DayKey) (Input, error) {
	all, err := e.records.ListByItemID(ctx, item.ID)
	if err != nil {
		return Input{}, domain.StoreError("list records", err)
	}

	records := make([]domain.CompletionRecord, 0, len(all))
	for _, r := range all {
		if e.cal.Key(r.CompletedAt) == day {
			records = append(records, r)
		}
	}

	return Input{
		Item:    item,
		Day:     day,
		Records: records,
		Pending: e.pendingCount(CellKey(item.ID, day)),
	}, nil
}

// newRecord dates a record on day: now when day is today, the reference
// instant of day otherwise.
func (e *Executor) newRecord(item *domain.TrackedItem, day domain.DayKey, detail types.JSONText) *domain.CompletionRecord {
	now := e.now()
	completedAt := now
	if e.cal.Key(now) != day {
		completedAt = e.cal.Instant(day)
	}

	rec := domain.NewCompletionRecord(item.ID, item.UserID, completedAt)
	rec.CreatedAt = now.UTC()
	rec.Detail = detail
	return rec
}

func (e *Executor) create(ctx context.Context, rec *domain.CompletionRecord) (*domain.CompletionRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := e.records.Create(ctx, rec); err != nil {
		return nil, domain.StoreError("create record", err)
	}
	e.publish(events.RecordCreated, rec.UserID, rec.ItemID, e.cal.Key(rec.CompletedAt))
	return rec, nil
}

func (e *Executor) destroy(ctx context.Context, item *domain.TrackedItem, cmd Command) error {
	if err := e.records.Delete(ctx, cmd.RecordID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
		return domain.StoreError("delete record", err)
	}
	e.publish(events.RecordDestroyed, item.UserID, item.ID, cmd.Day)
	return nil
}

func (e *Executor) open(item *domain.TrackedItem, day domain.DayKey, tr Transition) *PendingDetail {
	p := &PendingDetail{
		ID:       uuid.NewString(),
		UserID:   item.UserID,
		ItemID:   item.ID,
		Day:      day,
		From:     tr.From,
		To:       tr.To,
		OpenedAt: e.now().UTC(),
	}
	p.settle = func() {
		e.pendingMu.Lock()
		delete(e.pending, p.ID)
		e.pendingMu.Unlock()
	}

	e.pendingMu.Lock()
	e.pending[p.ID] = p
	e.pendingMu.Unlock()
	return p
}

func (e *Executor) lookup(userID, pendingID string) (*PendingDetail, error) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.expireLocked()

	p, ok := e.pending[pendingID]
	if !ok || p.UserID != userID {
		return nil, domain.ErrPendingNotFound
	}
	return p, nil
}

func (e *Executor) pendingCount(key string) int {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.expireLocked()

	n := 0
	for _, p := range e.pending {
		if CellKey(p.ItemID, p.Day) == key {
			n++
		}
	}
	return n
}

func (e *Executor) dropPending(key string) {
	e.pendingMu.Lock()
	var open []*PendingDetail
	for _, p := range e.pending {
		if CellKey(p.ItemID, p.Day) == key {
			open = append(open, p)
		}
	}
	e.pendingMu.Unlock()

	for _, p := range open {
		p.claim()
	}
}

// expireLocked settles flows opened more than pendingTTL ago. An expired flow
// can be neither submitted nor cancelled. Caller holds pendingMu.
func (e *Executor) expireLocked() {
	cutoff := e.now().UTC().Add(-e.pendingTTL)
	for id, p := range e.pending {
		if !p.OpenedAt.Before(cutoff) {
			continue
		}
		delete(e.pending, id)
		// settle is skipped: it would take pendingMu again
		p.once.Do(func() {})
		e.logger.Debug("detail flow expired", "user_id", p.UserID, "item_id", p.ItemID, "day", p.Day)
	}
}

func (e *Executor) publish(kind events.Kind, userID, itemID string, day domain.DayKey) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.Changed{Kind: kind, UserID: userID, ItemID: itemID, Day: day})
}

func (e *Executor) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStoreFailure):
		outcome = "store_failure"
		e.logger.Error("toggle store failure", "op", op, "error", err)
	default:
		outcome = "rejected"
	}
	e.recorder.ObserveToggle(op, outcome, time.Since(start))
}
