// Package store implements persistence for the catalog's entities on top
// of the db layer. Every operation takes the handle it should run on, so
// the same code works inside a transaction scope or directly on a session.
package store

import (
	"context"

	"github.com/uptrace/bun"

	"saucebottle/internal/model"
)

// Schema creates the catalog tables and indexes if they do not exist. It
// is idempotent and runs once at startup on a maintenance session.
func Schema(ctx context.Context, idb bun.IDB) error {
	models := []any{
		(*model.Politician)(nil),
		(*model.Statement)(nil),
	}

	for _, m := range models {
		_, err := idb.NewCreateTable().
			Model(m).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	indexes := []struct {
		name   string
		model  any
		column string
	}{
		{"idx_politicians_name", (*model.Politician)(nil), "name"},
		{"idx_statements_politician_id", (*model.Statement)(nil), "politician_id"},
		{"idx_statements_date_made", (*model.Statement)(nil), "date_made"},
	}

	for _, idx := range indexes {
		_, err := idb.NewCreateIndex().
			Model(idx.model).
			IfNotExists().
			Index(idx.name).
			Column(idx.column).
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}
