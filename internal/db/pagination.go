package db

import "github.com/uptrace/bun"

// DefaultLimit is applied when a caller does not specify a page size.
const DefaultLimit = 100

// MaxLimit caps the page size a caller can request.
const MaxLimit = 500

// ClampLimit normalizes a caller-supplied limit into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitOffset applies skip/limit pagination to a query with the standard
// caps.
//
// Usage:
//
//	idb.NewSelect().Model(&items).Apply(db.LimitOffset(skip, limit)).Scan(ctx)
func LimitOffset(skip, limit int) func(*bun.SelectQuery) *bun.SelectQuery {
	if skip < 0 {
		skip = 0
	}
	limit = ClampLimit(limit)

	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(limit).Offset(skip)
	}
}
