package db

import (
	"context"

	"github.com/uptrace/bun"

	"saucebottle/internal/apperr"
)

// Factory produces request-scoped sessions bound to one engine. It is
// cheap, stateless, and safe for concurrent use; the engine's pool is the
// only shared resource underneath.
type Factory struct {
	engine *Engine
}

// NewFactory returns a session factory bound to the given engine.
func NewFactory(engine *Engine) *Factory {
	return &Factory{engine: engine}
}

// Engine returns the factory's engine.
func (f *Factory) Engine() *Engine { return f.engine }

// Session is a unit of work owning one dedicated connection. It is created
// per logical operation, owned exclusively by that operation, and released
// exactly once via Close. Sessions are never pooled or reused across Open
// calls.
type Session struct {
	engine *Engine
	conn   bun.Conn
	scope  *Scope
	closed bool
}

// Open acquires a connection and verifies it with a trivial round-trip.
// If verification fails the connection is released and a
// ConnectionUnavailable domain error is returned; no Session is ever
// handed out on a dead connection. This is the request-serving variant:
// the caller's context governs every I/O the session performs.
func (f *Factory) Open(ctx context.Context) (*Session, error) {
	conn, err := f.engine.Conn(ctx)
	if err != nil {
		return nil, apperr.ConnectionUnavailable(string(f.engine.backend), err)
	}

	if _, err := conn.ExecContext(ctx, "SELECT 1"); err != nil {
		_ = conn.Close()
		return nil, apperr.ConnectionUnavailable(string(f.engine.backend), err)
	}

	return &Session{engine: f.engine, conn: conn}, nil
}

// OpenBlocking opens a session for maintenance paths that have no request
// context, such as schema bootstrap at startup. Acquisition is bounded by
// the engine's dial timeout; semantics are otherwise identical to Open.
func (f *Factory) OpenBlocking() (*Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.engine.config.DialTimeout)
	defer cancel()
	return f.Open(ctx)
}

// OpenWithScope opens a session and begins a transaction scope on it, for
// operations that need explicit commit/rollback control. On failure
// nothing is handed to the caller.
func (f *Factory) OpenWithScope(ctx context.Context) (*Session, *Scope, error) {
	session, err := f.Open(ctx)
	if err != nil {
		return nil, nil, err
	}

	scope, err := session.Begin(ctx)
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}

	return session, scope, nil
}

// Begin opens a transaction scope on the session. Opening a second scope
// while one is still active is rejected: scopes do not nest.
func (s *Session) Begin(ctx context.Context) (*Scope, error) {
	if s.closed {
		return nil, apperr.InvalidScopeUse("begin on closed session")
	}
	if s.scope != nil && s.scope.state != ScopeClosed {
		return nil, apperr.InvalidScopeUse("scope already open on this session")
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapError(err, "Begin")
	}

	s.scope = &Scope{session: s, tx: tx, state: ScopeOpen}
	return s.scope, nil
}

// DB returns the handle for running statements: the active scope's
// transaction if one is open, otherwise the session's connection.
func (s *Session) DB() bun.IDB {
	if s.scope != nil && s.scope.state == ScopeOpen {
		return s.scope.tx
	}
	return s.conn
}

// Close releases the session's connection. An open scope is closed first,
// which rolls it back, so the connection never returns to the pool in an
// indeterminate transaction state. Close is idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.scope != nil {
		_ = s.scope.Close()
	}
	return s.conn.Close()
}

// RunInScope opens a session with a scope, runs fn inside it, and commits
// when fn returns nil. Any error or panic from fn rolls the scope back and
// propagates unmodified.
func (f *Factory) RunInScope(ctx context.Context, fn func(ctx context.Context, idb bun.IDB) error) error {
	session, scope, err := f.OpenWithScope(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	defer func() {
		if p := recover(); p != nil {
			_ = scope.Close()
			panic(p)
		}
	}()

	if err := fn(ctx, scope.DB()); err != nil {
		_ = scope.Close()
		return err
	}

	return scope.Commit()
}
