// Package sqlite implements the repository interfaces on a local SQLite file.
//
// modernc.org/sqlite is a pure Go port of SQLite, so the binary builds
// without a C toolchain. sqlx sits on top of database/sql and maps rows to
// structs through `db` tags.
//
// HANDLES:
// The pool is capped at a single connection. Every store method checks that
// connection out with Connx, runs its statements and hands it back before
// returning, on success and on error alike. Nothing is held between calls,
// so there is no transaction spanning two store operations.
//
// KEY CONCEPTS:
//
// 1. sql.DB IS A POOL, NOT A CONNECTION:
//    sqlx.DB wraps database/sql's pool. Each query borrows a connection and
//    returns it when done. With SetMaxOpenConns(1) there is exactly one, so
//    a second caller blocks until the first hands it back.
//
// 2. ":memory:" LIVES ON ONE CONNECTION:
//    An in-memory SQLite database belongs to the connection that opened
//    it. A second pooled connection would see an empty database. Capping
//    the pool keeps every call on the same one.
//
// 3. Connx + defer Close():
//    conn.Close() on a *sqlx.Conn does not close the underlying SQLite
//    handle. It returns the connection to the pool. Forgetting it leaves
//    the pool empty and the next call waits forever.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB is the Schema Manager and the backing store for both repositories.
type DB struct {
	conn   *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// New opens the database at dbPath and brings its schema to SchemaVersion.
//
// dbPath examples:
//   - "data/medsupply.db" → file-based database
//   - ":memory:"          → in-memory database, gone on Close
//
// A failure while creating or upgrading the schema is returned as is; the
// caller is expected to treat it as fatal.
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and an in-memory
	// database only exists on the connection that created it.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{
		conn:   conn,
		logger: logger,
		now:    time.Now,
	}

	if err := db.open(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: preparing schema: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// withConn checks out a connection for the duration of fn and always
// returns it to the pool.
//
// USAGE:
//
//	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
//	    return conn.GetContext(ctx, &row, `SELECT ...`, id)
//	})
//
// The ctx passed to Connx bounds the wait for the connection; the ctx
// passed to the query inside bounds the query itself.
func (db *DB) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := db.conn.Connx(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: acquiring connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}
