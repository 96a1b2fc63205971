package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const DriverName = "sqlite"

var bindOnce sync.Once

// Open opens a SQLite database through sqlx with foreign keys enforced.
// SQLite allows one writer, so the pool is pinned to a single connection;
// this also keeps a ":memory:" database alive for the lifetime of the pool.
func Open(path string, logger *slog.Logger) (*sqlx.DB, error) {
	bindOnce.Do(func() {
		sqlx.BindDriver(DriverName, sqlx.QUESTION)
	})

	logger.Info("Opening SQLite database", slog.String("path", path))

	db, err := sqlx.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}
