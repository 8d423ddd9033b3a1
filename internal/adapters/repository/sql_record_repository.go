package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

var _ domain.RecordStore = (*SQLRecordRepository)(nil)

const recordColumns = `id, item_id, user_id, completed_at, created_at, detail`

type SQLRecordRepository struct {
	db *sqlx.DB
}

func NewSQLRecordRepository(db *sqlx.DB) *SQLRecordRepository {
	return &SQLRecordRepository{db: db}
}

func (r *SQLRecordRepository) Create(ctx context.Context, record *domain.CompletionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO completion_records (` + recordColumns + `)
		VALUES (:id, :item_id, :user_id, :completed_at, :created_at, :detail)`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrItemNotFound
		}
		return storeErr("create record", err)
	}
	return nil
}

func (r *SQLRecordRepository) GetByID(ctx context.Context, id string) (*domain.CompletionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var record domain.CompletionRecord
	query := r.db.Rebind(`SELECT ` + recordColumns + ` FROM completion_records WHERE id = ?`)
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, storeErr("get record", err)
	}
	return &record, nil
}

func (r *SQLRecordRepository) ListByUserID(ctx context.Context, userID string) ([]domain.CompletionRecord, error) {
	return r.list(ctx, "list records by user", `user_id = ?`, userID)
}

func (r *SQLRecordRepository) ListByItemID(ctx context.Context, itemID string) ([]domain.CompletionRecord, error) {
	return r.list(ctx, "list records by item", `item_id = ?`, itemID)
}

func (r *SQLRecordRepository) list(ctx context.Context, op, where string, arg string) ([]domain.CompletionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	records := []domain.CompletionRecord{}
	query := r.db.Rebind(`SELECT ` + recordColumns + ` FROM completion_records WHERE ` + where +
		` ORDER BY completed_at DESC, created_at DESC, id ASC`)
	if err := r.db.SelectContext(ctx, &records, query, arg); err != nil {
		return nil, storeErr(op, err)
	}
	return records, nil
}

func (r *SQLRecordRepository) Update(ctx context.Context, record *domain.CompletionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `UPDATE completion_records SET completed_at = :completed_at, detail = :detail WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return storeErr("update record", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *SQLRecordRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM completion_records WHERE id = ?`), id)
	if err != nil {
		return storeErr("delete record", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}
