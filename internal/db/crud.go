package db

import (
	"context"

	"github.com/uptrace/bun"
)

// Generic persistence helpers over bun.IDB, so the same call sites work
// against a connection, a session, or a transaction scope.

// FindByID finds a record by its primary key.
func FindByID[T any](ctx context.Context, idb bun.IDB, id any) (*T, error) {
	model := new(T)

	err := idb.NewSelect().
		Model(model).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapError(err, "FindByID")
	}

	return model, nil
}

// FindAll finds all records matching the query.
func FindAll[T any](ctx context.Context, idb bun.IDB, query func(q *bun.SelectQuery) *bun.SelectQuery) ([]T, error) {
	models := make([]T, 0)

	q := idb.NewSelect().Model(&models)
	if query != nil {
		q = query(q)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, wrapError(err, "FindAll")
	}

	return models, nil
}

// Create inserts a new record.
func Create[T any](ctx context.Context, idb bun.IDB, model *T) error {
	if _, err := idb.NewInsert().Model(model).Exec(ctx); err != nil {
		return wrapError(err, "Create")
	}
	return nil
}

// Update updates an existing record by primary key. A missing record is a
// not-found classification, not a silent no-op.
func Update[T any](ctx context.Context, idb bun.IDB, model *T) error {
	result, err := idb.NewUpdate().
		Model(model).
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapError(err, "Update")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &Error{
			Code:    CodeNotFound,
			Message: "record not found for update",
			Op:      "Update",
		}
	}

	return nil
}

// DeleteByID deletes a record by its primary key value.
func DeleteByID[T any](ctx context.Context, idb bun.IDB, id any) error {
	model := new(T)

	result, err := idb.NewDelete().
		Model(model).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapError(err, "DeleteByID")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return &Error{
			Code:    CodeNotFound,
			Message: "record not found for deletion",
			Op:      "DeleteByID",
		}
	}

	return nil
}

// Exists reports whether a record matches the query.
func Exists[T any](ctx context.Context, idb bun.IDB, query func(q *bun.SelectQuery) *bun.SelectQuery) (bool, error) {
	model := new(T)

	q := idb.NewSelect().Model(model)
	if query != nil {
		q = query(q)
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, wrapError(err, "Exists")
	}

	return exists, nil
}

// Count counts records matching the query.
func Count[T any](ctx context.Context, idb bun.IDB, query func(q *bun.SelectQuery) *bun.SelectQuery) (int, error) {
	model := new(T)

	q := idb.NewSelect().Model(model)
	if query != nil {
		q = query(q)
	}

	count, err := q.Count(ctx)
	if err != nil {
		return 0, wrapError(err, "Count")
	}

	return count, nil
}

// batchSize is the default chunk size for BatchInsert.
const batchSize = 100

// BatchInsert inserts records in chunks, for bulk ingest paths. Returns
// the total number of rows inserted.
func BatchInsert[T any](ctx context.Context, idb bun.IDB, items []T, size int) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if size <= 0 {
		size = batchSize
	}

	var total int64
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))

		batch := items[i:end]
		result, err := idb.NewInsert().Model(&batch).Exec(ctx)
		if err != nil {
			return total, wrapError(err, "BatchInsert")
		}

		rows, _ := result.RowsAffected()
		total += rows
	}

	return total, nil
}
