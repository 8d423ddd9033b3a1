package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

// Wire shapes; the domain types only marshal.
type statusBody struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Goal   int    `json:"goal"`
}

type resultBody struct {
	From     statusBody `json:"from"`
	To       statusBody `json:"to"`
	Commands []struct {
		Kind     string `json:"kind"`
		RecordID string `json:"record_id"`
	} `json:"commands"`
	Pending *struct {
		ID  string        `json:"id"`
		Day domain.DayKey `json:"day"`
	} `json:"pending"`
}

type daysBody struct {
	Today domain.DayKey `json:"today"`
	Days  []struct {
		Day       domain.DayKey `json:"day"`
		Records   int           `json:"records"`
		Completed int           `json:"completed"`
		Goaled    int           `json:"goaled"`
		Items     []struct {
			ItemID string     `json:"item_id"`
			Status statusBody `json:"status"`
		} `json:"items"`
	} `json:"days"`
	Pending []struct {
		ID string `json:"id"`
	} `json:"pending"`
}

func TestTrackerHandler_ToggleRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "tracker@kanso.app")
	item := s.createItem(t, token, map[string]any{"name": "Meditate", "goal_per_day": 1})

	w := s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[resultBody](t, w)
	assert.Equal(t, "incomplete", res.From.Status)
	assert.Equal(t, "complete", res.To.Status)
	assert.Nil(t, res.Pending)

	days := decode[daysBody](t, s.do(t, http.MethodGet, "/api/v1/tracker/days", token, nil))
	require.NotEmpty(t, days.Days)
	last := days.Days[len(days.Days)-1]
	assert.Equal(t, days.Today, last.Day)
	assert.Equal(t, 1, last.Records)
	assert.Equal(t, 1, last.Completed)
	assert.Len(t, days.Days, 7, "minimum window")

	w = s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "incomplete", decode[resultBody](t, w).To.Status)

	days = decode[daysBody](t, s.do(t, http.MethodGet, "/api/v1/tracker/days?window=3", token, nil))
	require.Len(t, days.Days, 3)
	assert.Equal(t, 0, days.Days[2].Records)
}

func TestTrackerHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "errors@kanso.app")
	item := s.createItem(t, token, map[string]any{"name": "Pushups", "goal_per_day": 1})

	t.Run("Bad input", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID, "day": "15/06/2024"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/tracker/days?window=-1", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/tracker/days?window=lots", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown item", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": "missing"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Ambiguous uncomplete then destroy last", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w := s.do(t, http.MethodPost, "/api/v1/records", token, map[string]any{"item_id": item.ID})
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		w := s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/tracker/destroy-last", token, map[string]any{"item_id": item.ID})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "complete", decode[resultBody](t, w).To.Status)

		w = s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "incomplete", decode[resultBody](t, w).To.Status)

		w = s.do(t, http.MethodPost, "/api/v1/tracker/destroy-last", token, map[string]any{"item_id": item.ID})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Override clears the cell", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			s.do(t, http.MethodPost, "/api/v1/records", token, map[string]any{"item_id": item.ID})
		}

		w := s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID, "override": true})
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[resultBody](t, w)
		assert.Equal(t, "incomplete", res.To.Status)
		assert.Len(t, res.Commands, 3)
	})
}

func TestTrackerHandler_DetailFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "detail@kanso.app")
	item := s.createItem(t, token, map[string]any{"name": "Run", "type": "numeric", "unit": "km", "goal_per_day": 1})

	w := s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	res := decode[resultBody](t, w)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "complete", res.To.Status)

	days := decode[daysBody](t, s.do(t, http.MethodGet, "/api/v1/tracker/days", token, nil))
	require.Len(t, days.Pending, 1)
	today := days.Days[len(days.Days)-1]
	assert.Equal(t, 0, today.Records, "nothing is written yet")
	assert.Equal(t, "complete", today.Items[0].Status.Status, "pending flows count optimistically")

	w = s.do(t, http.MethodPost, "/api/v1/tracker/pending/"+res.Pending.ID, token, map[string]any{"detail": map[string]any{"km": 5}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"km":5`)

	w = s.do(t, http.MethodDelete, "/api/v1/tracker/pending/"+res.Pending.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "a settled flow cannot be cancelled")

	w = s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "detailed records are not undone by a tap")

	t.Run("Cancel rolls back", func(t *testing.T) {
		yesterday := string(days.Today.AddDays(-1))
		w := s.do(t, http.MethodPost, "/api/v1/tracker/toggle", token, map[string]any{"item_id": item.ID, "day": yesterday})
		require.Equal(t, http.StatusAccepted, w.Code)
		pending := decode[resultBody](t, w).Pending

		w = s.do(t, http.MethodDelete, "/api/v1/tracker/pending/"+pending.ID, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"incomplete"`)

		w = s.do(t, http.MethodPost, "/api/v1/tracker/pending/"+pending.ID, token, map[string]any{"detail": map[string]any{"km": 1}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
