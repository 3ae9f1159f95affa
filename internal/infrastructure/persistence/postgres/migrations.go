// Package postgres implements the durable persistence tier for the BrainQuest
// progress hub.
package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: IDENTITY DOCUMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Identities = `
-- Migration: Create identity documents
-- Version: 001

CREATE TABLE IF NOT EXISTS identities (
    owner_id   TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Leaderboard rebuild scans order by xp; keep it indexed.
CREATE INDEX IF NOT EXISTS idx_identities_xp ON identities (((doc->>'xp')::int) DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: WEEKLY PROGRESS DOCUMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002WeeklyProgress = `
-- Migration: Create weekly progress documents
-- Version: 002
-- The superseded week is overwritten in place on rollover, never archived.

CREATE TABLE IF NOT EXISTS weekly_progress (
    owner_id   TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_weekly_progress_week_start
    ON weekly_progress ((doc->>'weekStartDate'));
`

// migrations lists all migrations in execution order.
var migrations = []struct {
	version int
	name    string
	sql     string
}{
	{1, "create_identities", migration001Identities},
	{2, "create_weekly_progress", migration002WeeklyProgress},
}

// RunMigrations applies all migrations. Each statement is idempotent
// (IF NOT EXISTS), so re-running on startup is safe.
func (c *Connection) RunMigrations(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := c.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("%w: %03d_%s: %v", ErrMigrationFailed, m.version, m.name, err)
		}
	}
	return nil
}
