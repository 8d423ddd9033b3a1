package toggle

import (
	"sort"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/tally"
)

type CommandKind int

const (
	CreateRecord CommandKind = iota + 1
	DestroyRecord
	// RequestDetail defers the record to a detail-entry flow.
	RequestDetail
)

func (k CommandKind) String() string {
	switch k {
	case CreateRecord:
		return "create_record"
	case DestroyRecord:
		return "destroy_record"
	case RequestDetail:
		return "request_detail"
	default:
		return "unknown"
	}
}

type Command struct {
	Kind     CommandKind   `json:"kind"`
	ItemID   string        `json:"item_id"`
	Day      domain.DayKey `json:"day"`
	RecordID string        `json:"record_id,omitempty"`
}

// Input describes one cell. Records may contain records of other items or
// days; only those of Item count. Pending is the number of detail flows
// already opened for the cell and not yet settled.
type Input struct {
	Item     *domain.TrackedItem
	Day      domain.DayKey
	Records  []domain.CompletionRecord
	Pending  int
	Override bool
}

type Transition struct {
	From     domain.CompletionStatus `json:"from"`
	To       domain.CompletionStatus `json:"to"`
	Commands []Command               `json:"commands"`
}

// CellKey is the serialization key of an (item, day) cell.
func CellKey(itemID string, day domain.DayKey) string {
	return itemID + "|" + string(day)
}

// EffectiveGoal is the goal used for toggling. Items without a goal behave
// like a goal of one.
func EffectiveGoal(item *domain.TrackedItem) int {
	if g := item.Goal(); g > 0 {
		return g
	}
	return 1
}

// CellStatus is the toggle state of the cell, counting pending detail flows
// as records.
func CellStatus(in Input) domain.CompletionStatus {
	return tally.StatusFor(len(cellRecords(in))+in.Pending, EffectiveGoal(in.Item))
}

// Toggle advances an incomplete cell by one record, or clears a complete one.
func Toggle(in Input) (Transition, error) {
	records := cellRecords(in)
	goal := EffectiveGoal(in.Item)
	from := tally.StatusFor(len(records)+in.Pending, goal)
	tr := Transition{From: from}

	if in.Override {
		tr.To = domain.Incomplete
		tr.Commands = make([]Command, 0, len(records))
		for _, r := range records {
			tr.Commands = append(tr.Commands, destroy(in, r))
		}
		return tr, nil
	}

	if !from.IsComplete() {
		kind := CreateRecord
		if in.Item.RequiresDetail() {
			kind = RequestDetail
		}
		tr.Commands = []Command{{Kind: kind, ItemID: in.Item.ID, Day: in.Day}}
		tr.To = tally.StatusFor(from.Count+1, goal)
		return tr, nil
	}

	if in.Item.RequiresDetail() {
		return Transition{From: from, To: from}, domain.ErrDetailedRecordUncompleteRejected
	}
	if len(records) > 1 {
		return Transition{From: from, To: from}, domain.ErrAmbiguousUncomplete
	}
	if len(records) == 0 {
		// complete only through pending flows, nothing to destroy yet
		return Transition{From: from, To: from}, domain.ErrRecordNotFoundForDay
	}

	tr.To = domain.Incomplete
	tr.Commands = []Command{destroy(in, records[0])}
	return tr, nil
}

// DestroyLast removes the most recent record of the cell and steps the status
// down by one record.
func DestroyLast(in Input) (Transition, error) {
	records := cellRecords(in)
	goal := EffectiveGoal(in.Item)
	from := tally.StatusFor(len(records)+in.Pending, goal)

	if len(records) == 0 {
		return Transition{From: from, To: from}, domain.ErrRecordNotFoundForDay
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].NewerThan(records[j])
	})

	return Transition{
		From:     from,
		To:       tally.StatusFor(from.Count-1, goal),
		Commands: []Command{destroy(in, records[0])},
	}, nil
}

func cellRecords(in Input) []domain.CompletionRecord {
	out := make([]domain.CompletionRecord, 0, len(in.Records))
	for _, r := range in.Records {
		if r.ItemID == in.Item.ID {
			out = append(out, r)
		}
	}
	return out
}

func destroy(in Input, r domain.CompletionRecord) Command {
	return Command{Kind: DestroyRecord, ItemID: in.Item.ID, Day: in.Day, RecordID: r.ID}
}
