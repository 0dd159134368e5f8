package migrations

import (
	"context"
	"database/sql"
)

// Single-row table describing where the snapshot came from.
func upAddSnapshotMeta(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshot_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			source TEXT NOT NULL,
			exported_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func downAddSnapshotMeta(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS snapshot_meta`)
	return err
}
