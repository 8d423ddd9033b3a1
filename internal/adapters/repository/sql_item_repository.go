package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

var _ domain.ItemStore = (*SQLItemRepository)(nil)

const itemColumns = `id, user_id, name, description, color, icon, sort_order, type, unit,
	goal_per_day, creation_day, archived_at, current_streak, best_streak,
	version, created_at, updated_at`

// SQLItemRepository stores items through sqlx. Queries are written with "?"
// placeholders and rebound for the connected driver.
type SQLItemRepository struct {
	db *sqlx.DB
}

func NewSQLItemRepository(db *sqlx.DB) *SQLItemRepository {
	return &SQLItemRepository{db: db}
}

func (r *SQLItemRepository) Create(ctx context.Context, item *domain.TrackedItem) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if item.Version == 0 {
		item.Version = 1
	}

	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES (:id, :user_id, :name, :description, :color, :icon, :sort_order, :type, :unit,
			:goal_per_day, :creation_day, :archived_at, :current_streak, :best_streak,
			:version, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrItemInvalidUserID
		}
		if isUniqueViolation(err) {
			return domain.ErrItemConflict
		}
		return storeErr("create item", err)
	}
	return nil
}

func (r *SQLItemRepository) GetByID(ctx context.Context, id string) (*domain.TrackedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var item domain.TrackedItem
	query := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE id = ?`)
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, storeErr("get item", err)
	}
	return &item, nil
}

func (r *SQLItemRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TrackedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	items := []*domain.TrackedItem{}
	query := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE user_id = ? ORDER BY sort_order ASC, created_at ASC`)
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, storeErr("list items", err)
	}
	return items, nil
}

// Update writes the editable columns when item.Version matches the stored
// version, then bumps the version on both sides.
func (r *SQLItemRepository) Update(ctx context.Context, item *domain.TrackedItem) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE items SET
			name = :name, description = :description, color = :color, icon = :icon,
			sort_order = :sort_order, type = :type, unit = :unit, goal_per_day = :goal_per_day,
			archived_at = :archived_at, updated_at = :updated_at, version = version + 1
		WHERE id = :id AND version = :version`

	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return storeErr("update item", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("update item", err)
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, item.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: item %s is not at version %d", domain.ErrItemConflict, item.ID, item.Version)
	}

	item.Version++
	return nil
}

func (r *SQLItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return storeErr("delete item", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// UpdateStreaks touches only the cached streak columns; the version stays.
func (r *SQLItemRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.Rebind(`UPDATE items SET current_streak = ?, best_streak = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, current, best, id)
	if err != nil {
		return storeErr("update streaks", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}
