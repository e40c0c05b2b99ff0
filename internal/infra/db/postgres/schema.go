package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS history_records (
    id               TEXT PRIMARY KEY,
    session_id       TEXT NOT NULL,
    guild_id         TEXT NOT NULL,
    group_name       TEXT NOT NULL,
    fractal_number   TEXT NOT NULL DEFAULT '',
    group_number     TEXT NOT NULL DEFAULT '',
    facilitator_id   TEXT NOT NULL,
    facilitator_name TEXT NOT NULL DEFAULT '',
    aborted          BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_records_guild ON history_records (guild_id);
CREATE INDEX IF NOT EXISTS idx_history_records_completed_at ON history_records (completed_at);

CREATE TABLE IF NOT EXISTS history_entries (
    record_id    TEXT NOT NULL REFERENCES history_records(id) ON DELETE CASCADE,
    place        INT NOT NULL,
    member_id    TEXT NOT NULL,
    display_name TEXT NOT NULL DEFAULT '',
    level        INT NOT NULL,
    respect      INT NOT NULL,
    PRIMARY KEY (record_id, place)
);
CREATE INDEX IF NOT EXISTS idx_history_entries_member ON history_entries (member_id);

CREATE TABLE IF NOT EXISTS members (
    member_id      TEXT PRIMARY KEY,
    display_name   TEXT NOT NULL DEFAULT '',
    wallet_address TEXT NOT NULL DEFAULT '',
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the history tables if they do not exist yet. Safe to
// run at every boot; all statements are idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
