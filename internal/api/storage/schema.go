package storage

import (
	"context"
	"fmt"
	"strings"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            {{pk}},
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('admin', 'employer', 'job_seeker')),
	full_name     TEXT NOT NULL DEFAULT '',
	created_at    {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
	id              {{pk}},
	employer_id     BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	skills_required TEXT NOT NULL DEFAULT '',
	job_type        TEXT NOT NULL DEFAULT '',
	location_city   TEXT NOT NULL DEFAULT '',
	location_state  TEXT NOT NULL DEFAULT '',
	salary_min      BIGINT,
	salary_max      BIGINT,
	status          TEXT NOT NULL DEFAULT 'active',
	deadline        DATE,
	views           BIGINT NOT NULL DEFAULT 0,
	created_at      {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS jobs_employer_idx ON jobs (employer_id, created_at);

CREATE TABLE IF NOT EXISTS job_applications (
	id             {{pk}},
	job_id         BIGINT NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
	applicant_id   BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	status         TEXT NOT NULL DEFAULT 'pending',
	cover_letter   TEXT NOT NULL DEFAULT '',
	portfolio_link TEXT NOT NULL DEFAULT '',
	version        BIGINT NOT NULL DEFAULT 1,
	created_at     {{ts}} NOT NULL,
	updated_at     {{ts}} NOT NULL,
	UNIQUE (job_id, applicant_id)
);

CREATE INDEX IF NOT EXISTS job_applications_applicant_idx ON job_applications (applicant_id, created_at);

CREATE TABLE IF NOT EXISTS messages (
	id           {{pk}},
	sender_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	recipient_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	content      TEXT NOT NULL,
	is_read      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_sender_idx ON messages (sender_id, created_at);
CREATE INDEX IF NOT EXISTS messages_recipient_idx ON messages (recipient_id, sender_id, is_read);

CREATE TABLE IF NOT EXISTS notifications (
	id                  {{pk}},
	user_id             BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	message             TEXT NOT NULL,
	link                TEXT NOT NULL DEFAULT '',
	is_read             BOOLEAN NOT NULL DEFAULT FALSE,
	created_at          {{ts}} NOT NULL,
	delivery_status     TEXT NOT NULL DEFAULT 'pending',
	delivery_attempts   BIGINT NOT NULL DEFAULT 0,
	delivery_updated_at {{ts}},
	delivered_at        {{ts}}
);

CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at, id);
CREATE INDEX IF NOT EXISTS notifications_delivery_idx ON notifications (delivery_status, created_at);
`

// Migrate creates the schema if it does not exist yet. PostgreSQL is the
// production target; SQLite is accepted for local runs and tests.
func (s *Storage) Migrate(ctx context.Context) error {
	var replacer *strings.Replacer
	switch s.db.DriverName() {
	case "postgres":
		replacer = strings.NewReplacer("{{pk}}", "BIGSERIAL PRIMARY KEY", "{{ts}}", "TIMESTAMPTZ")
	case "sqlite":
		replacer = strings.NewReplacer("{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{ts}}", "TIMESTAMP")
	default:
		return fmt.Errorf("unsupported database driver: %s", s.db.DriverName())
	}

	for _, stmt := range strings.Split(replacer.Replace(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return nil
}
