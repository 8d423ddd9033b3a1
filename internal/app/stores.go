package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-tally/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-tally/internal/config"
	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

// Stores groups the persistence ports for one configured backend.
type Stores struct {
	Items   domain.ItemStore
	Records domain.RecordStore
	Users   domain.UserRepository

	// DB is nil for the memory driver.
	DB *sqlx.DB
}

// OpenStores connects the configured backend. SQL backends are migrated when
// migrate is set.
func OpenStores(ctx context.Context, cfg config.DatabaseConfig, migrate bool) (*Stores, error) {
	if cfg.Driver == config.DriverMemory {
		records := repository.NewInMemoryRecordRepository()
		return &Stores{
			Items:   repository.NewInMemoryItemRepository(records),
			Records: records,
			Users:   repository.NewInMemoryUserRepository(),
		}, nil
	}

	db, err := repository.Open(ctx, cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("app: migrate: %w", err)
		}
	}

	return &Stores{
		Items:   repository.NewSQLItemRepository(db),
		Records: repository.NewSQLRecordRepository(db),
		Users:   repository.NewSQLUserRepository(db),
		DB:      db,
	}, nil
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
