package tally_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/tally"
)

func TestBucket_Window(t *testing.T) {
	tests := []struct {
		name      string
		records   []domain.CompletionRecord
		minWindow int
		wantFirst domain.DayKey
		wantLen   int
	}{
		{
			name:      "No records: exactly minWindow empty days ending today",
			minWindow: 7,
			wantFirst: today.AddDays(-6),
			wantLen:   7,
		},
		{
			name:      "Only today: buffer is minWindow-1",
			records:   []domain.CompletionRecord{rec("a", 0, 9)},
			minWindow: 7,
			wantFirst: today.AddDays(-6),
			wantLen:   7,
		},
		{
			name:      "Earliest inside the window",
			records:   []domain.CompletionRecord{rec("a", -6, 9), rec("a", -2, 9)},
			minWindow: 7,
			wantFirst: today.AddDays(-6),
			wantLen:   7,
		},
		{
			name:      "Earliest exactly minWindow days back extends by one",
			records:   []domain.CompletionRecord{rec("a", -7, 9)},
			minWindow: 7,
			wantFirst: today.AddDays(-7),
			wantLen:   8,
		},
		{
			name:      "Old data extends the window, never truncates",
			records:   []domain.CompletionRecord{rec("a", -1, 9), rec("b", -30, 9)},
			minWindow: 7,
			wantFirst: today.AddDays(-30),
			wantLen:   31,
		},
		{
			name:      "Non-positive window behaves as one day",
			minWindow: 0,
			wantFirst: today,
			wantLen:   1,
		},
		{
			name:      "Future records extend the window forward",
			records:   []domain.CompletionRecord{rec("a", 2, 9)},
			minWindow: 3,
			wantFirst: today.AddDays(-2),
			wantLen:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tally.Bucket(utcCal, tt.records, today, tt.minWindow)

			require.Equal(t, tt.wantLen, b.Len())
			first, _ := b.Earliest()
			assert.Equal(t, tt.wantFirst, first)

			days := b.Days()
			for i := 1; i < len(days); i++ {
				assert.Equal(t, 1, days[i-1].DaysUntil(days[i]), "window must be contiguous")
			}
			assert.True(t, b.Has(today))
		})
	}
}

func TestBucket_EveryRecordIsPresent(t *testing.T) {
	records := []domain.CompletionRecord{
		rec("a", -12, 8), rec("b", -3, 20), rec("a", -3, 7), rec("c", 0, 23), rec("a", -40, 1),
	}

	b := tally.Bucket(utcCal, records, today, 7)

	assert.GreaterOrEqual(t, b.Len(), 7)
	for _, r := range records {
		day := utcCal.Key(r.CompletedAt)
		require.True(t, b.Has(day), "missing day %s", day)
		assert.Contains(t, b.Records(day), r)
	}
	assert.Equal(t, len(records), tally.TotalRecords(b))
}

func TestBucket_OrdersMostRecentFirst(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	backfilled := domain.CompletionRecord{ID: "late", ItemID: "a", CompletedAt: at, CreatedAt: at.Add(48 * time.Hour)}
	onTime := domain.CompletionRecord{ID: "ontime", ItemID: "a", CompletedAt: at, CreatedAt: at}
	evening := domain.CompletionRecord{ID: "evening", ItemID: "a", CompletedAt: at.Add(8 * time.Hour), CreatedAt: at.Add(8 * time.Hour)}

	b := tally.Bucket(utcCal, []domain.CompletionRecord{onTime, evening, backfilled}, today, 7)

	recs := b.Records(today)
	require.Len(t, recs, 3)
	assert.Equal(t, "evening", recs[0].ID)
	assert.Equal(t, "late", recs[1].ID, "createdAt breaks completedAt ties")
	assert.Equal(t, "ontime", recs[2].ID)
}

func TestBucket_UsesCalendarZone(t *testing.T) {
	tokyo := domain.MustCalendar(time.FixedZone("JST", 9*60*60))
	// 20:00 UTC on the 14th is already the 15th in Tokyo
	r := domain.CompletionRecord{ID: "r", ItemID: "a", CompletedAt: time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)}

	b := tally.Bucket(tokyo, []domain.CompletionRecord{r}, today, 2)

	assert.Equal(t, 1, b.Count(today))
	assert.Equal(t, 0, b.Count(today.AddDays(-1)))
}

func TestBucket_CenturiesOldRecordStaysContiguous(t *testing.T) {
	current := domain.DayKey("2026-10-18")
	old := domain.CompletionRecord{ID: "old", ItemID: "a", CompletedAt: time.Date(1700, 1, 1, 12, 0, 0, 0, time.UTC)}

	b := tally.Bucket(utcCal, []domain.CompletionRecord{old}, current, 7)

	require.Equal(t, 119360, b.Len())
	first, _ := b.Earliest()
	assert.Equal(t, domain.DayKey("1700-01-01"), first)
	assert.True(t, b.Has(current))
	assert.Equal(t, 1, b.Count("1700-01-01"))

	days := b.Days()
	assert.Equal(t, current, days[len(days)-1])
	for i := 1; i < len(days); i++ {
		if days[i-1].DaysUntil(days[i]) != 1 {
			t.Fatalf("gap between %s and %s", days[i-1], days[i])
		}
	}
}
