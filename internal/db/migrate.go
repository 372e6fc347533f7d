package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so
// the full list is applied on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS push_subscriptions (
		id TEXT PRIMARY KEY,
		endpoint TEXT NOT NULL UNIQUE,
		p256dh TEXT NOT NULL DEFAULT '',
		auth TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`ALTER TABLE push_subscriptions ADD COLUMN last_failure_at TEXT`,
	`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_created ON push_subscriptions(created_at)`,
}
