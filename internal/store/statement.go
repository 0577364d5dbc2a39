package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"saucebottle/internal/apperr"
	"saucebottle/internal/db"
	"saucebottle/internal/model"
)

// StatementFilter narrows a statement listing. Zero values mean "no
// filter" for that dimension.
type StatementFilter struct {
	PoliticianID int64
	DateFrom     *time.Time
	DateTo       *time.Time
	Skip         int
	Limit        int
}

// validate rejects an inverted date range before any query runs.
func (f StatementFilter) validate() error {
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return apperr.InvalidRange(
			f.DateFrom.Format(time.DateOnly),
			f.DateTo.Format(time.DateOnly),
		)
	}
	return nil
}

// ListStatements returns a page of statements, newest first, optionally
// narrowed to one politician and a date range.
func ListStatements(ctx context.Context, idb bun.IDB, filter StatementFilter) ([]model.Statement, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	return db.FindAll[model.Statement](ctx, idb, func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.PoliticianID != 0 {
			q = q.Where("politician_id = ?", filter.PoliticianID)
		}
		if filter.DateFrom != nil {
			q = q.Where("date_made >= ?", *filter.DateFrom)
		}
		if filter.DateTo != nil {
			q = q.Where("date_made <= ?", *filter.DateTo)
		}
		return q.Order("date_made DESC", "id DESC").Apply(db.LimitOffset(filter.Skip, filter.Limit))
	})
}

// GetStatement returns one statement by id.
func GetStatement(ctx context.Context, idb bun.IDB, id int64) (*model.Statement, error) {
	s, err := db.FindByID[model.Statement](ctx, idb, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.EntityNotFound("statement", id)
		}
		return nil, err
	}
	return s, nil
}

// CreateStatement inserts a statement after verifying the politician it
// references exists, and bumps that politician's statement count in the
// same scope.
func CreateStatement(ctx context.Context, idb bun.IDB, s *model.Statement) error {
	ok, err := politicianExists(ctx, idb, s.PoliticianID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.EntityNotFound("politician", s.PoliticianID)
	}

	if s.ReviewStatus == "" {
		s.ReviewStatus = model.ReviewStatusPending
	}

	if err := db.Create(ctx, idb, s); err != nil {
		return err
	}

	return adjustStatementCount(ctx, idb, s.PoliticianID, 1)
}

// UpdateStatement updates a statement. Moving it to another politician
// shifts the statement counts of both.
func UpdateStatement(ctx context.Context, idb bun.IDB, s *model.Statement) error {
	current, err := GetStatement(ctx, idb, s.ID)
	if err != nil {
		return err
	}

	if s.PoliticianID != current.PoliticianID {
		ok, err := politicianExists(ctx, idb, s.PoliticianID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.EntityNotFound("politician", s.PoliticianID)
		}
	}

	if err := db.Update(ctx, idb, s); err != nil {
		if db.IsNotFound(err) {
			return apperr.EntityNotFound("statement", s.ID)
		}
		return err
	}

	if s.PoliticianID != current.PoliticianID {
		if err := adjustStatementCount(ctx, idb, current.PoliticianID, -1); err != nil {
			return err
		}
		return adjustStatementCount(ctx, idb, s.PoliticianID, 1)
	}
	return nil
}

// DeleteStatement removes a statement and decrements its politician's
// statement count.
func DeleteStatement(ctx context.Context, idb bun.IDB, id int64) error {
	current, err := GetStatement(ctx, idb, id)
	if err != nil {
		return err
	}

	if err := db.DeleteByID[model.Statement](ctx, idb, id); err != nil {
		if db.IsNotFound(err) {
			return apperr.EntityNotFound("statement", id)
		}
		return err
	}

	return adjustStatementCount(ctx, idb, current.PoliticianID, -1)
}

// BulkCreateStatements inserts a batch of statements for ingest. Every
// referenced politician is verified up front; the batch is all-or-nothing
// when run inside one scope. Returns the number of rows inserted.
func BulkCreateStatements(ctx context.Context, idb bun.IDB, statements []*model.Statement) (int64, error) {
	if len(statements) == 0 {
		return 0, nil
	}

	perPolitician := make(map[int64]int)
	for _, s := range statements {
		if s.ReviewStatus == "" {
			s.ReviewStatus = model.ReviewStatusPending
		}
		perPolitician[s.PoliticianID]++
	}

	for id := range perPolitician {
		ok, err := politicianExists(ctx, idb, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, apperr.EntityNotFound("politician", id)
		}
	}

	total, err := db.BatchInsert(ctx, idb, statements, 0)
	if err != nil {
		return total, err
	}

	for id, n := range perPolitician {
		if err := adjustStatementCount(ctx, idb, id, n); err != nil {
			return total, err
		}
	}

	return total, nil
}
