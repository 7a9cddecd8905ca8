package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/medsupply/internal/model"
)

// SchemaVersion is stored in PRAGMA user_version. Bump it whenever a
// table definition below changes.
const SchemaVersion = 3

// ErrSchemaTooNew is returned when the file was written by a newer build.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

const createSchemaSQL = `
CREATE TABLE orders (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	supply       TEXT NOT NULL,
	quantity     TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_date TEXT NOT NULL,
	priority     TEXT NOT NULL
);

CREATE TABLE user_profile (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	national_id TEXT NOT NULL,
	email       TEXT NOT NULL,
	phone       TEXT NOT NULL,
	address     TEXT NOT NULL,
	photo_ref   TEXT,
	location    TEXT
);
`

// open makes sure both tables exist in their current shape.
//
// PRAGMA user_version:
// Every SQLite file header has a 32-bit integer slot that SQLite itself
// never touches. It starts at 0 in a new file. We store SchemaVersion in
// it after creating the tables, so the next open can tell a fresh file,
// a current one and one written by an older build apart without a
// separate migrations table.
//
// DECISION TABLE:
//   - user_version == SchemaVersion: nothing to do.
//   - user_version == 0: fresh file, create and seed.
//   - user_version <  SchemaVersion: drop every table, then create and seed.
//     Existing orders and profile edits are lost.
//   - user_version >  SchemaVersion: refuse with ErrSchemaTooNew.
//
// TRANSACTIONAL DDL:
// Unlike some databases, SQLite runs CREATE and DROP TABLE inside a
// transaction, and user_version is written to the same page. A failed
// upgrade rolls all three back, leaving the file as it was.
func (db *DB) open(ctx context.Context) error {
	return db.withConn(ctx, func(conn *sqlx.Conn) error {
		var version int
		if err := conn.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}

		if version == SchemaVersion {
			return nil
		}
		if version > SchemaVersion {
			return fmt.Errorf("%w: file has version %d, build supports %d",
				ErrSchemaTooNew, version, SchemaVersion)
		}

		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning schema transaction: %w", err)
		}
		defer tx.Rollback()

		if version > 0 {
			db.logger.Warn("schema upgrade drops all existing data",
				slog.Int("from", version),
				slog.Int("to", SchemaVersion),
			)
			if err := dropAllTables(ctx, tx); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, createSchemaSQL); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}

		if err := seedProfile(ctx, tx); err != nil {
			return err
		}

		// PRAGMA arguments cannot be bound; SchemaVersion is a constant.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("writing schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing schema: %w", err)
		}

		db.logger.Info("schema ready", slog.Int("version", SchemaVersion))
		return nil
	})
}

// dropAllTables removes every user table, including ones left behind by
// older layouts this build no longer knows about.
func dropAllTables(ctx context.Context, tx *sqlx.Tx) error {
	var tables []string
	err := tx.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}

	for _, name := range tables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, name)); err != nil {
			return fmt.Errorf("dropping table %s: %w", name, err)
		}
	}
	return nil
}

func seedProfile(ctx context.Context, tx *sqlx.Tx) error {
	p := model.DefaultProfile()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_profile (id, name, national_id, email, phone, address, photo_ref, location)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, NULL)`,
		p.ID, p.Name, p.NationalID, p.Email, p.Phone, p.Address,
	)
	if err != nil {
		return fmt.Errorf("seeding profile: %w", err)
	}
	return nil
}
