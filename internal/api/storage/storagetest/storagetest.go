// Package storagetest provides a migrated in-memory database for tests.
package storagetest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/shared/sqlite"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewDB opens an in-memory SQLite database with the schema applied.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewStorage(db).Migrate(context.Background()))

	return db
}

func NewStorage(t *testing.T) *storage.Storage {
	t.Helper()
	return storage.NewStorage(NewDB(t))
}

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func CreateUser(t *testing.T, store *storage.Storage, username string, role domain.Role) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		FullName:     username + " Name",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateUser(context.Background(), user))

	return user
}

func CreateJob(t *testing.T, store *storage.Storage, employerID int64, title string, deadline *time.Time) *model.Job {
	t.Helper()

	job := &model.Job{
		EmployerID: employerID,
		Title:      title,
		Status:     domain.JobStatusActive,
		Deadline:   deadline,
		CreatedAt:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateJob(context.Background(), job))

	return job
}
