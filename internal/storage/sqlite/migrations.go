package sqlite

import (
	"database/sql"
	"fmt"
)

// schema sets up the key-value table.
// It runs on startup to ensure the table exists.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    version INTEGER NOT NULL,
    deleted INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);
`

// runMigrations executes the schema setup and brings tables created before
// the deleted column existed up to date.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	ok, err := hasColumn(db, "kv", "deleted")
	if err != nil {
		return err
	}
	if !ok {
		if _, err := db.Exec("ALTER TABLE kv ADD COLUMN deleted INTEGER NOT NULL DEFAULT 0"); err != nil {
			return fmt.Errorf("failed to add deleted column: %w", err)
		}
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
