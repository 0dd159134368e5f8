package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfenderov/contacts/internal/contact"
)

// ErrNotFound is returned when the snapshot has not been written yet.
var ErrNotFound = errors.New("not found")

// Stats counts the rows of a snapshot.
type Stats struct {
	Contacts   int `db:"contacts"`
	Attributes int `db:"attributes"`
	Notes      int `db:"notes"`
}

// Meta describes the origin of a snapshot.
type Meta struct {
	Source     string    `db:"source"`
	ExportedAt time.Time `db:"exported_at"`
}

type contactRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type attributeRow struct {
	ContactID int64  `db:"contact_id"`
	Key       string `db:"attr_key"`
	Value     string `db:"attr_value"`
	Position  int    `db:"position"`
}

type noteRow struct {
	ContactID int64  `db:"contact_id"`
	Content   string `db:"content"`
	Position  int    `db:"position"`
}

// ReplaceContacts swaps the stored snapshot for contacts in one transaction.
// source records which file the contacts were loaded from.
func (s *Store) ReplaceContacts(ctx context.Context, source string, contacts []contact.Contact) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Attributes and notes go with their contact via CASCADE
	if _, err := tx.ExecContext(ctx, "DELETE FROM contacts"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	for i, c := range contacts {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO contacts (name, position) VALUES (?, ?)",
			c.Name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contact %q: %w", c.Name, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}

		for j, a := range c.Attributes {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO attributes (contact_id, attr_key, attr_value, position)
				VALUES (:contact_id, :attr_key, :attr_value, :position)
			`, attributeRow{ContactID: id, Key: a.Key, Value: a.Value, Position: j})
			if err != nil {
				return fmt.Errorf("failed to insert attribute for %q: %w", c.Name, err)
			}
		}

		for j, n := range c.Notes {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO notes (contact_id, content, position)
				VALUES (:contact_id, :content, :position)
			`, noteRow{ContactID: id, Content: n, Position: j})
			if err != nil {
				return fmt.Errorf("failed to insert note for %q: %w", c.Name, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshot_meta (id, source, exported_at)
		VALUES (1, ?, ?)
	`, source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record snapshot source: %w", err)
	}

	return tx.Commit()
}

// ListContacts returns the stored contacts in their original file order.
func (s *Store) ListContacts(ctx context.Context) ([]contact.Contact, error) {
	var rows []contactRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, name FROM contacts ORDER BY position"); err != nil {
		return nil, err
	}

	contacts := make([]contact.Contact, len(rows))
	index := make(map[int64]int, len(rows))
	for i, r := range rows {
		contacts[i] = contact.Contact{
			Name:       r.Name,
			Attributes: []contact.Attribute{},
			Notes:      []string{},
		}
		index[r.ID] = i
	}

	var attrs []attributeRow
	err := s.db.SelectContext(ctx, &attrs, `
		SELECT contact_id, attr_key, attr_value, position
		FROM attributes
		ORDER BY contact_id, position
	`)
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		c := &contacts[index[a.ContactID]]
		c.Attributes = append(c.Attributes, contact.Attribute{Key: a.Key, Value: a.Value})
	}

	var notes []noteRow
	err = s.db.SelectContext(ctx, &notes, `
		SELECT contact_id, content, position
		FROM notes
		ORDER BY contact_id, position
	`)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		c := &contacts[index[n.ContactID]]
		c.Notes = append(c.Notes, n.Content)
	}

	return contacts, nil
}

// Stats returns row counts for the snapshot.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `
		SELECT
			(SELECT COUNT(*) FROM contacts) AS contacts,
			(SELECT COUNT(*) FROM attributes) AS attributes,
			(SELECT COUNT(*) FROM notes) AS notes
	`)
	return st, err
}

// Meta returns where the snapshot came from, or ErrNotFound before the
// first export.
func (s *Store) Meta(ctx context.Context) (*Meta, error) {
	var m Meta
	err := s.db.GetContext(ctx, &m, "SELECT source, exported_at FROM snapshot_meta WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
