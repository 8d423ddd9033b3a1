package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

func sqlStores(db *sqlx.DB) stores {
	return stores{
		items:   NewSQLItemRepository(db),
		records: NewSQLRecordRepository(db),
		users:   NewSQLUserRepository(db),
	}
}

func TestSQLRepositories_SQLite(t *testing.T) {
	runStoreContract(t, func(t *testing.T) stores {
		return sqlStores(openSQLite(t))
	})
}

func TestSQLRepositories_SQLite_Constraints(t *testing.T) {
	ctx := context.Background()
	s := sqlStores(openSQLite(t))
	user := seedUser(t, s)

	t.Run("Item for unknown user", func(t *testing.T) {
		item, err := domain.NewTrackedItem("ghost", domain.ItemParams{Name: "Water"}, utcCal, time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, s.items.Create(ctx, item), domain.ErrItemInvalidUserID)
	})

	t.Run("Duplicate item id", func(t *testing.T) {
		item := seedItem(t, s, user.ID, "Water", 0)
		dup := *item
		assert.ErrorIs(t, s.items.Create(ctx, &dup), domain.ErrItemConflict)
	})

	t.Run("Record for unknown item", func(t *testing.T) {
		rec := domain.NewCompletionRecord("ghost", user.ID, time.Now())
		assert.ErrorIs(t, s.records.Create(ctx, rec), domain.ErrItemNotFound)
	})

	t.Run("Empty detail is stored as an empty object", func(t *testing.T) {
		item := seedItem(t, s, user.ID, "Stretch", 1)
		rec := domain.NewCompletionRecord(item.ID, user.ID, time.Now())
		require.NoError(t, s.records.Create(ctx, rec))

		got, err := s.records.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(got.Detail))
		assert.False(t, got.HasDetail())
	})
}

func TestSQLRepositories_StoreFailure(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	s := sqlStores(db)
	require.NoError(t, db.Close())

	_, err := s.items.GetByID(ctx, "any")
	assert.ErrorIs(t, err, domain.ErrStoreFailure)

	_, err = s.records.ListByUserID(ctx, "any")
	assert.ErrorIs(t, err, domain.ErrStoreFailure)

	_, err = s.users.GetByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openSQLite(t)
	assert.NoError(t, Migrate(context.Background(), db))
}
