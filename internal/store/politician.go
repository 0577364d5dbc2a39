package store

import (
	"context"

	"github.com/uptrace/bun"

	"saucebottle/internal/apperr"
	"saucebottle/internal/db"
	"saucebottle/internal/model"
)

// ListPoliticians returns a page of politicians ordered by name.
func ListPoliticians(ctx context.Context, idb bun.IDB, skip, limit int) ([]model.Politician, error) {
	return db.FindAll[model.Politician](ctx, idb, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("name ASC").Apply(db.LimitOffset(skip, limit))
	})
}

// CountPoliticians returns the total number of politicians.
func CountPoliticians(ctx context.Context, idb bun.IDB) (int, error) {
	return db.Count[model.Politician](ctx, idb, nil)
}

// GetPolitician returns one politician by id.
func GetPolitician(ctx context.Context, idb bun.IDB, id int64) (*model.Politician, error) {
	p, err := db.FindByID[model.Politician](ctx, idb, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.EntityNotFound("politician", id)
		}
		return nil, err
	}
	return p, nil
}

// CreatePolitician inserts a politician. Names are unique across the
// catalog; a second politician with the same name is rejected.
func CreatePolitician(ctx context.Context, idb bun.IDB, p *model.Politician) error {
	if err := db.Create(ctx, idb, p); err != nil {
		if db.IsDuplicate(err) {
			return apperr.DuplicateEntity("politician", p.Name)
		}
		return err
	}
	return nil
}

// UpdatePolitician updates a politician by primary key.
func UpdatePolitician(ctx context.Context, idb bun.IDB, p *model.Politician) error {
	if err := db.Update(ctx, idb, p); err != nil {
		if db.IsNotFound(err) {
			return apperr.EntityNotFound("politician", p.ID)
		}
		if db.IsDuplicate(err) {
			return apperr.DuplicateEntity("politician", p.Name)
		}
		return err
	}
	return nil
}

// DeletePolitician removes a politician and their statements.
func DeletePolitician(ctx context.Context, idb bun.IDB, id int64) error {
	// Statements first so the foreign key never dangles.
	_, err := idb.NewDelete().
		Model((*model.Statement)(nil)).
		Where("politician_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if err := db.DeleteByID[model.Politician](ctx, idb, id); err != nil {
		if db.IsNotFound(err) {
			return apperr.EntityNotFound("politician", id)
		}
		return err
	}
	return nil
}

// politicianExists reports whether the politician id is present.
func politicianExists(ctx context.Context, idb bun.IDB, id int64) (bool, error) {
	return db.Exists[model.Politician](ctx, idb, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	})
}

// adjustStatementCount moves a politician's denormalized statement count
// by delta. It runs inside the same scope as the statement write, so the
// counter and the rows move together or not at all.
func adjustStatementCount(ctx context.Context, idb bun.IDB, politicianID int64, delta int) error {
	_, err := idb.NewUpdate().
		Model((*model.Politician)(nil)).
		Set("statement_count = statement_count + ?", delta).
		Where("id = ?", politicianID).
		Exec(ctx)
	return err
}
