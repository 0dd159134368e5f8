package migrations

import (
	"context"
	"database/sql"
)

func upAddPositionIndexes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position);
		CREATE INDEX IF NOT EXISTS idx_attributes_contact ON attributes(contact_id, position);
		CREATE INDEX IF NOT EXISTS idx_notes_contact ON notes(contact_id, position);
	`)
	return err
}

func downAddPositionIndexes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP INDEX IF EXISTS idx_notes_contact;
		DROP INDEX IF EXISTS idx_attributes_contact;
		DROP INDEX IF EXISTS idx_contacts_position;
	`)
	return err
}
