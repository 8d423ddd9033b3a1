package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

func TestItemHandler(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "items@kanso.app")
	other := s.signUp(t, "other@kanso.app")

	water := s.createItem(t, token, map[string]any{"name": "Water", "goal_per_day": 8, "color": "#3366FF"})
	read := s.createItem(t, token, map[string]any{"name": "Read"})

	t.Run("Create validates", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/items", token, map[string]any{"name": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/items", token, map[string]any{"name": "Bad", "color": "blue"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/items", token, map[string]any{"name": "Bad", "goal_per_day": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List is ordered and scoped to the user", func(t *testing.T) {
		list := decode[[]domain.TrackedItem](t, s.do(t, http.MethodGet, "/api/v1/items", token, nil))
		require.Len(t, list, 2)
		assert.Equal(t, water.ID, list[0].ID)
		assert.Equal(t, read.ID, list[1].ID)

		theirs := decode[[]domain.TrackedItem](t, s.do(t, http.MethodGet, "/api/v1/items", other, nil))
		assert.Empty(t, theirs)
	})

	t.Run("Foreign items look missing", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/items/"+water.ID, other, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, http.MethodDelete, "/api/v1/items/"+water.ID, other, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Update checks the version", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/items/"+water.ID, token, map[string]any{"name": "Hydrate", "version": water.Version})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[domain.TrackedItem](t, w)
		assert.Equal(t, "Hydrate", updated.Name)
		assert.Equal(t, "#3366FF", updated.Color, "empty fields keep their value")
		assert.Equal(t, water.Version+1, updated.Version)

		w = s.do(t, http.MethodPut, "/api/v1/items/"+water.ID, token, map[string]any{"name": "Stale", "version": water.Version})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = s.do(t, http.MethodPut, "/api/v1/items/"+water.ID, token, map[string]any{"name": "No version"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Reorder", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/items/"+read.ID+"/position", token, map[string]any{"sort_order": -1})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		list := decode[[]domain.TrackedItem](t, s.do(t, http.MethodGet, "/api/v1/items", token, nil))
		assert.Equal(t, read.ID, list[0].ID)
	})

	t.Run("Archive hides the item unless asked", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/items/"+read.ID+"/archive", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, decode[domain.TrackedItem](t, w).ArchivedAt)

		active := decode[[]domain.TrackedItem](t, s.do(t, http.MethodGet, "/api/v1/items", token, nil))
		assert.Len(t, active, 1)

		all := decode[[]domain.TrackedItem](t, s.do(t, http.MethodGet, "/api/v1/items?include_archived=true", token, nil))
		assert.Len(t, all, 2)

		w = s.do(t, http.MethodGet, "/api/v1/items?include_archived=maybe", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		current := decode[domain.TrackedItem](t, s.do(t, http.MethodGet, "/api/v1/items/"+read.ID, token, nil))
		w = s.do(t, http.MethodPut, "/api/v1/items/"+read.ID, token, map[string]any{"name": "Frozen", "version": current.Version})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/items/"+read.ID+"/restore", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decode[domain.TrackedItem](t, w).ArchivedAt)
	})

	t.Run("Delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/items/"+read.ID, token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/items/%s", read.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
