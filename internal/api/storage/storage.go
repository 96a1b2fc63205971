package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Storage runs every query through ext, which is either the pool or an open
// transaction. Queries are written with ? placeholders and rebound per driver.
type Storage struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		db:  db,
		ext: db,
	}
}

// WithTx runs fn inside a single transaction. Calls made on a Storage that is
// already transactional join the outer transaction.
func (s *Storage) WithTx(ctx context.Context, fn func(tx *Storage) error) error {
	if _, ok := s.ext.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&Storage{db: s.db, ext: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, s.ext, dest, s.ext.Rebind(query), args...)
}

func (s *Storage) list(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, s.ext, dest, s.ext.Rebind(query), args...)
}

func (s *Storage) exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := s.ext.ExecContext(ctx, s.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
