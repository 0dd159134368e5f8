// Package migrations holds the schema of the contacts snapshot database.
package migrations

import "github.com/pressly/goose/v3"

// All returns every schema migration in version order.
func All() []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(1,
			&goose.GoFunc{RunTx: upCreateContacts},
			&goose.GoFunc{RunTx: downCreateContacts}),
		goose.NewGoMigration(2,
			&goose.GoFunc{RunTx: upAddPositionIndexes},
			&goose.GoFunc{RunTx: downAddPositionIndexes}),
		goose.NewGoMigration(3,
			&goose.GoFunc{RunTx: upAddSnapshotMeta},
			&goose.GoFunc{RunTx: downAddSnapshotMeta}),
	}
}
