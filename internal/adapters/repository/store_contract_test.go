package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

// stores groups one backend's repositories so the same behaviour can be
// checked against SQLite, Postgres and the in-memory maps.
type stores struct {
	items   domain.ItemStore
	records domain.RecordStore
	users   domain.UserRepository
}

var utcCal = domain.MustCalendar(time.UTC)

func intPtr(v int) *int { return &v }

func seedUser(t *testing.T, s stores) *domain.User {
	t.Helper()

	user, err := domain.NewUser(uuid.NewString(), uuid.NewString()[:8]+"@kanso.app")
	require.NoError(t, err)
	user.PasswordHash = "hash"
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func seedItem(t *testing.T, s stores, userID, name string, order int) *domain.TrackedItem {
	t.Helper()

	item, err := domain.NewTrackedItem(userID, domain.ItemParams{Name: name, GoalPerDay: intPtr(2)}, utcCal,
		time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	item.SortOrder = order
	require.NoError(t, s.items.Create(context.Background(), item))
	return item
}

func seedRecord(t *testing.T, s stores, item *domain.TrackedItem, completedAt, createdAt time.Time) *domain.CompletionRecord {
	t.Helper()

	rec := domain.NewCompletionRecord(item.ID, item.UserID, completedAt)
	rec.CreatedAt = createdAt.UTC()
	require.NoError(t, s.records.Create(context.Background(), rec))
	return rec
}

func recordIDs(records []domain.CompletionRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

func runStoreContract(t *testing.T, newStores func(t *testing.T) stores) {
	ctx := context.Background()

	t.Run("Users", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)

		got, err := s.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, "hash", got.PasswordHash)

		byEmail, err := s.users.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		dup, _ := domain.NewUser(uuid.NewString(), user.Email)
		dup.PasswordHash = "hash"
		assert.ErrorIs(t, s.users.Create(ctx, dup), domain.ErrEmailAlreadyExists)

		_, err = s.users.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = s.users.GetByEmail(ctx, "nobody@kanso.app")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Items_CreateGetList", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)
		second := seedItem(t, s, user.ID, "Read", 1)
		first := seedItem(t, s, user.ID, "Water", 0)

		got, err := s.items.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Water", got.Name)
		assert.Equal(t, domain.DayKey("2024-06-01"), got.CreationDay)
		require.NotNil(t, got.GoalPerDay)
		assert.Equal(t, 2, *got.GoalPerDay)
		assert.Equal(t, 1, got.Version)
		assert.Nil(t, got.ArchivedAt)

		list, err := s.items.ListByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)

		empty, err := s.items.ListByUserID(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)

		_, err = s.items.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("Items_UpdateChecksVersion", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)
		item := seedItem(t, s, user.ID, "Water", 0)

		stale := *item

		item.Name = "Hydrate"
		item.GoalPerDay = nil
		require.NoError(t, s.items.Update(ctx, item))
		assert.Equal(t, 2, item.Version)

		got, err := s.items.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hydrate", got.Name)
		assert.Nil(t, got.GoalPerDay)
		assert.Equal(t, 2, got.Version)

		stale.Name = "Lost update"
		assert.ErrorIs(t, s.items.Update(ctx, &stale), domain.ErrItemConflict)

		ghost := *item
		ghost.ID = "missing"
		assert.ErrorIs(t, s.items.Update(ctx, &ghost), domain.ErrItemNotFound)
	})

	t.Run("Items_ArchiveRoundTrip", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)
		item := seedItem(t, s, user.ID, "Water", 0)

		item.Archive(time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))
		require.NoError(t, s.items.Update(ctx, item))

		got, err := s.items.GetByID(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ArchivedAt)
		assert.True(t, got.ArchivedAt.Equal(time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)))
	})

	t.Run("Items_UpdateStreaksKeepsVersion", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)
		item := seedItem(t, s, user.ID, "Water", 0)

		require.NoError(t, s.items.UpdateStreaks(ctx, item.ID, 3, 7))

		got, err := s.items.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.CurrentStreak)
		assert.Equal(t, 7, got.BestStreak)
		assert.Equal(t, 1, got.Version)

		assert.ErrorIs(t, s.items.UpdateStreaks(ctx, "missing", 1, 1), domain.ErrItemNotFound)
	})

	t.Run("Items_DeleteCascadesRecords", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)
		item := seedItem(t, s, user.ID, "Water", 0)
		other := seedItem(t, s, user.ID, "Read", 1)
		at := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
		seedRecord(t, s, item, at, at)
		kept := seedRecord(t, s, other, at, at)

		require.NoError(t, s.items.Delete(ctx, item.ID))

		_, err := s.items.GetByID(ctx, item.ID)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)

		gone, err := s.records.ListByItemID(ctx, item.ID)
		require.NoError(t, err)
		assert.Empty(t, gone)

		all, err := s.records.ListByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{kept.ID}, recordIDs(all))

		assert.ErrorIs(t, s.items.Delete(ctx, item.ID), domain.ErrItemNotFound)
	})

	t.Run("Records_CRUD", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)
		item := seedItem(t, s, user.ID, "Run", 0)

		at := time.Date(2024, 6, 3, 7, 30, 0, 0, time.UTC)
		rec := domain.NewCompletionRecord(item.ID, user.ID, at)
		rec.Detail = types.JSONText(`{"km": 5}`)
		require.NoError(t, s.records.Create(ctx, rec))

		got, err := s.records.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ItemID)
		assert.True(t, got.CompletedAt.Equal(at))
		assert.JSONEq(t, `{"km": 5}`, string(got.Detail))
		assert.True(t, got.HasDetail())

		moved := time.Date(2024, 6, 4, 7, 30, 0, 0, time.UTC)
		got.CompletedAt = moved
		got.Detail = types.JSONText(`{"km": 6}`)
		require.NoError(t, s.records.Update(ctx, got))

		updated, err := s.records.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.True(t, updated.CompletedAt.Equal(moved))
		assert.JSONEq(t, `{"km": 6}`, string(updated.Detail))

		require.NoError(t, s.records.Delete(ctx, rec.ID))
		_, err = s.records.GetByID(ctx, rec.ID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)

		assert.ErrorIs(t, s.records.Delete(ctx, rec.ID), domain.ErrRecordNotFound)
		assert.ErrorIs(t, s.records.Update(ctx, rec), domain.ErrRecordNotFound)
	})

	t.Run("Records_ListedNewestFirst", func(t *testing.T) {
		s := newStores(t)
		user := seedUser(t, s)
		water := seedItem(t, s, user.ID, "Water", 0)
		read := seedItem(t, s, user.ID, "Read", 1)

		day := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
		oldest := seedRecord(t, s, water, day.Add(-48*time.Hour), day)
		backfilledEarly := seedRecord(t, s, water, day, day.Add(time.Minute))
		backfilledLate := seedRecord(t, s, water, day, day.Add(2*time.Minute))
		other := seedRecord(t, s, read, day.Add(-time.Hour), day)

		byItem, err := s.records.ListByItemID(ctx, water.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{backfilledLate.ID, backfilledEarly.ID, oldest.ID}, recordIDs(byItem))

		byUser, err := s.records.ListByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{backfilledLate.ID, backfilledEarly.ID, other.ID, oldest.ID}, recordIDs(byUser))

		none, err := s.records.ListByUserID(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
