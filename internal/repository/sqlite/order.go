package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/medsupply/internal/apperror"
	"github.com/sakif/medsupply/internal/model"
	"github.com/sakif/medsupply/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// If *DB stops satisfying repository.OrderRepository (a method renamed or
// its signature changed), this line fails to compile instead of the error
// surfacing where the store is wired into a controller.
var _ repository.OrderRepository = (*DB)(nil)

// orderRow mirrors the orders table. Status stays raw text here so that
// decoding, and the warning on bad data, happen in one place.
type orderRow struct {
	ID          int64  `db:"id"`
	Supply      string `db:"supply"`
	Quantity    string `db:"quantity"`
	Status      string `db:"status"`
	CreatedDate string `db:"created_date"`
	Priority    string `db:"priority"`
}

const selectOrderColumns = `SELECT id, supply, quantity, status, created_date, priority FROM orders`

func (db *DB) toOrder(r orderRow) model.Order {
	status, ok := model.ParseStatus(r.Status)
	if !ok {
		// Unknown text usually means a hand-edited or corrupted row.
		db.logger.Warn("unknown order status, treating as pending",
			slog.Int64("id", r.ID),
			slog.String("status", r.Status),
		)
		status = model.StatusPending
	}
	return model.Order{
		ID:          r.ID,
		Supply:      r.Supply,
		Quantity:    r.Quantity,
		Status:      status,
		CreatedDate: r.CreatedDate,
		Priority:    r.Priority,
	}
}

// ListOrders returns all orders, highest id first.
//
// KEY CONCEPTS:
//
// 1. SelectContext:
//    sqlx runs the query, loops over the rows and scans each one into a
//    new orderRow by matching column names to `db` tags. It also closes
//    the rows, which plain database/sql leaves to the caller.
//
// 2. EMPTY TABLE:
//    rows stays nil when nothing matches. The result is built with make so
//    callers always get a non-nil slice, which encodes as [] in JSON.
func (db *DB) ListOrders(ctx context.Context) ([]model.Order, error) {
	var rows []orderRow
	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, selectOrderColumns+` ORDER BY id DESC`)
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing orders: %w", err)
	}

	orders := make([]model.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, db.toOrder(r))
	}
	return orders, nil
}

// GetOrder looks up one order. A missing id yields apperror.ErrNotFound.
func (db *DB) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	var r orderRow
	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &r, selectOrderColumns+` WHERE id = ?`, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("sqlite: getting order %d: %w", id, err)
	}

	o := db.toOrder(r)
	return &o, nil
}

// CreateOrder inserts a Pending order dated today and returns it with the
// id the database assigned.
func (db *DB) CreateOrder(ctx context.Context, supply, quantity, priority string) (*model.Order, error) {
	order := model.Order{
		Supply:      supply,
		Quantity:    quantity,
		Status:      model.StatusPending,
		CreatedDate: model.FormatCreatedDate(db.now()),
		Priority:    priority,
	}

	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx,
			`INSERT INTO orders (supply, quantity, status, created_date, priority)
			 VALUES (?, ?, ?, ?, ?)`,
			order.Supply,
			order.Quantity,
			string(order.Status),
			order.CreatedDate,
			order.Priority,
		)
		if err != nil {
			return err
		}
		order.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating order: %w", err)
	}

	return &order, nil
}

// UpdateStatus sets the status of one order. Only the matching row is
// written; a missing id yields apperror.ErrNotFound.
//
// RowsAffected tells the two cases apart in one round trip: 1 means the
// row existed and was written, 0 means there was no such id.
func (db *DB) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	if !status.Valid() {
		return apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", status))
	}

	var affected int64
	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx,
			`UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: updating order %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("order", id)
	}
	return nil
}

// DeleteOrder removes one order. A missing id yields apperror.ErrNotFound.
func (db *DB) DeleteOrder(ctx context.Context, id int64) error {
	var affected int64
	err := db.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: deleting order %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("order", id)
	}
	return nil
}
