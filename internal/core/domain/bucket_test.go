package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

func TestDayBucket_Accessors(t *testing.T) {
	at := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	b := domain.NewDayBucket(map[domain.DayKey][]domain.CompletionRecord{
		"2024-01-03": {},
		"2024-01-01": {{ID: "r1", ItemID: "a", CompletedAt: at}},
		"2024-01-02": {{ID: "r2", ItemID: "a", CompletedAt: at}, {ID: "r3", ItemID: "b", CompletedAt: at}},
	})

	assert.Equal(t, []domain.DayKey{"2024-01-01", "2024-01-02", "2024-01-03"}, b.Days())
	assert.Equal(t, 3, b.Len())
	assert.True(t, b.Has("2024-01-03"))
	assert.False(t, b.Has("2024-01-04"))
	assert.Equal(t, 2, b.Count("2024-01-02"))
	assert.Equal(t, 1, b.CountForItem("2024-01-02", "b"))
	assert.Len(t, b.RecordsForItem("2024-01-02", "a"), 1)

	first, ok := b.Earliest()
	require.True(t, ok)
	assert.Equal(t, domain.DayKey("2024-01-01"), first)
	last, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, domain.DayKey("2024-01-03"), last)

	t.Run("Returned slices are copies", func(t *testing.T) {
		recs := b.Records("2024-01-02")
		recs[0].ID = "mutated"
		assert.Equal(t, "r2", b.Records("2024-01-02")[0].ID)

		days := b.Days()
		days[0] = "1999-01-01"
		assert.Equal(t, domain.DayKey("2024-01-01"), b.Days()[0])
	})

	t.Run("ForItem and Without keep the window", func(t *testing.T) {
		onlyA := b.ForItem("a")
		assert.Equal(t, b.Days(), onlyA.Days())
		assert.Equal(t, 1, onlyA.Count("2024-01-02"))

		noA := b.Without("a")
		assert.Equal(t, b.Days(), noA.Days())
		assert.Equal(t, 0, noA.Count("2024-01-01"))
		assert.NotNil(t, noA.Records("2024-01-01"))
		assert.Equal(t, "r3", noA.Records("2024-01-02")[0].ID)

		assert.Equal(t, 2, b.Count("2024-01-02"), "filtering must not touch the source")
	})
}

func TestDayBucket_Empty(t *testing.T) {
	var nilBucket *domain.DayBucket
	assert.Equal(t, 0, nilBucket.Len())
	assert.Nil(t, nilBucket.Days())

	_, ok := domain.NewDayBucket(nil).Latest()
	assert.False(t, ok)
}

func TestDayBucket_MarshalJSON(t *testing.T) {
	b := domain.NewDayBucket(map[domain.DayKey][]domain.CompletionRecord{
		"2024-01-02": {},
		"2024-01-01": {{ID: "r1", ItemID: "a"}},
	})

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded []struct {
		Day     string            `json:"day"`
		Records []json.RawMessage `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "2024-01-01", decoded[0].Day)
	assert.Len(t, decoded[0].Records, 1)
	assert.Equal(t, "2024-01-02", decoded[1].Day)
	assert.NotNil(t, decoded[1].Records)
	assert.Contains(t, string(data), `"records":[]`)
}
