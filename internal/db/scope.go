package db

import (
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"saucebottle/internal/apperr"
)

// ScopeState is the lifecycle state of a transaction scope.
type ScopeState int

const (
	// ScopeOpen is the entry state after Begin.
	ScopeOpen ScopeState = iota
	// ScopeCommitted means the scope's writes were persisted atomically.
	ScopeCommitted
	// ScopeRolledBack means the scope's writes were discarded.
	ScopeRolledBack
	// ScopeClosed is terminal; the scope's transaction handle is released.
	ScopeClosed
)

func (s ScopeState) String() string {
	switch s {
	case ScopeOpen:
		return "open"
	case ScopeCommitted:
		return "committed"
	case ScopeRolledBack:
		return "rolled back"
	case ScopeClosed:
		return "closed"
	}
	return "unknown"
}

// Scope wraps a session's transaction and enforces the state machine
//
//	Open -> {Committed, RolledBack} -> Closed
//
// Exactly one terminal transition happens per scope. A scope that reaches
// Close while still Open is rolled back: closing without an explicit
// success signal means the work did not finish, and half-finished work is
// discarded. A second explicit terminal call is a programming error and is
// rejected with InvalidScopeUse rather than ignored.
//
// A Scope belongs to the operation that opened it and must not be shared.
type Scope struct {
	session *Session
	tx      bun.Tx
	state   ScopeState
}

// State returns the current lifecycle state.
func (sc *Scope) State() ScopeState { return sc.state }

// DB returns the transaction for running statements. Statements issued
// after the scope reached a terminal state fail with InvalidScopeUse via
// the driver's tx-done error; see wrapError.
func (sc *Scope) DB() bun.IDB { return sc.tx }

// Commit persists all buffered writes atomically. Valid only while Open;
// anything else is a second terminal transition and is rejected.
func (sc *Scope) Commit() error {
	if sc.state != ScopeOpen {
		return apperr.InvalidScopeUse("commit on " + sc.state.String() + " scope")
	}

	if err := sc.tx.Commit(); err != nil {
		// The transaction is finished either way; record the discard.
		sc.state = ScopeRolledBack
		return wrapError(err, "Commit")
	}

	sc.state = ScopeCommitted
	return nil
}

// Rollback discards all buffered writes. Valid only while Open; calling it
// after a terminal transition is rejected. Error-path cleanup should go
// through Close, which rolls back implicitly and is safe to defer.
func (sc *Scope) Rollback() error {
	if sc.state != ScopeOpen {
		return apperr.InvalidScopeUse("rollback on " + sc.state.String() + " scope")
	}
	return sc.rollback()
}

func (sc *Scope) rollback() error {
	sc.state = ScopeRolledBack
	if err := sc.tx.Rollback(); err != nil {
		// A cancelled context may already have aborted the transaction;
		// the writes are discarded either way.
		if errors.Is(err, sql.ErrTxDone) {
			return nil
		}
		return wrapError(err, "Rollback")
	}
	return nil
}

// Close drives the scope to Closed on every exit path. From Open it rolls
// back first, so abandoning an operation mid-scope (error, timeout,
// explicit cancel) never leaves the connection in an indeterminate
// transaction state. Close is idempotent and safe to defer.
func (sc *Scope) Close() error {
	switch sc.state {
	case ScopeOpen:
		err := sc.rollback()
		sc.state = ScopeClosed
		return err
	case ScopeCommitted, ScopeRolledBack:
		sc.state = ScopeClosed
		return nil
	default:
		return nil
	}
}
