package domain

import (
	"encoding/json"
	"sort"
)

// DayBucket maps a contiguous window of day keys to the records completed on
// each day. It is built once and never mutated afterwards, so a single value
// can be shared between goroutines.
type DayBucket struct {
	days    []DayKey
	records map[DayKey][]CompletionRecord
}

// NewDayBucket builds a bucket from already grouped days. Days are sorted
// ascending and every record list is copied.
func NewDayBucket(byDay map[DayKey][]CompletionRecord) *DayBucket {
	b := &DayBucket{
		days:    make([]DayKey, 0, len(byDay)),
		records: make(map[DayKey][]CompletionRecord, len(byDay)),
	}
	for day, recs := range byDay {
		b.days = append(b.days, day)
		b.records[day] = append([]CompletionRecord{}, recs...)
	}
	sort.Slice(b.days, func(i, j int) bool { return b.days[i] < b.days[j] })
	return b
}

// Days returns the day keys in chronological order.
func (b *DayBucket) Days() []DayKey {
	if b == nil {
		return nil
	}
	return append([]DayKey{}, b.days...)
}

func (b *DayBucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.days)
}

func (b *DayBucket) Has(day DayKey) bool {
	if b == nil {
		return false
	}
	_, ok := b.records[day]
	return ok
}

// Records returns a copy of the day's records, most recent first.
func (b *DayBucket) Records(day DayKey) []CompletionRecord {
	if b == nil {
		return nil
	}
	return append([]CompletionRecord{}, b.records[day]...)
}

// Count is len(Records(day)) without the copy.
func (b *DayBucket) Count(day DayKey) int {
	if b == nil {
		return 0
	}
	return len(b.records[day])
}

// CountForItem counts the item's records on day.
func (b *DayBucket) CountForItem(day DayKey, itemID string) int {
	if b == nil {
		return 0
	}
	n := 0
	for _, r := range b.records[day] {
		if r.ItemID == itemID {
			n++
		}
	}
	return n
}

func (b *DayBucket) RecordsForItem(day DayKey, itemID string) []CompletionRecord {
	if b == nil {
		return nil
	}
	var out []CompletionRecord
	for _, r := range b.records[day] {
		if r.ItemID == itemID {
			out = append(out, r)
		}
	}
	return out
}

func (b *DayBucket) Earliest() (DayKey, bool) {
	if b.Len() == 0 {
		return "", false
	}
	return b.days[0], true
}

func (b *DayBucket) Latest() (DayKey, bool) {
	if b.Len() == 0 {
		return "", false
	}
	return b.days[len(b.days)-1], true
}

// ForItem returns a bucket over the same window holding only itemID's records.
func (b *DayBucket) ForItem(itemID string) *DayBucket {
	return b.filter(func(r CompletionRecord) bool { return r.ItemID == itemID })
}

// Without drops every record of itemID and keeps the window intact. Used when
// an item is hard-destroyed and cached buckets must forget it.
func (b *DayBucket) Without(itemID string) *DayBucket {
	return b.filter(func(r CompletionRecord) bool { return r.ItemID != itemID })
}

func (b *DayBucket) filter(keep func(CompletionRecord) bool) *DayBucket {
	out := &DayBucket{
		days:    b.Days(),
		records: make(map[DayKey][]CompletionRecord, b.Len()),
	}
	for _, day := range out.days {
		recs := []CompletionRecord{}
		for _, r := range b.records[day] {
			if keep(r) {
				recs = append(recs, r)
			}
		}
		out.records[day] = recs
	}
	return out
}

type bucketDayJSON struct {
	Day     DayKey             `json:"day"`
	Records []CompletionRecord `json:"records"`
}

func (b *DayBucket) MarshalJSON() ([]byte, error) {
	out := make([]bucketDayJSON, 0, b.Len())
	for _, day := range b.Days() {
		out = append(out, bucketDayJSON{Day: day, Records: b.Records(day)})
	}
	return json.Marshal(out)
}
