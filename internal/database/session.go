package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of database/sql used by repositories to run statements.
// *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session is a storage handle scoped to one logical operation.
// *sql.Conn (per request) and *sql.DB (tools, tests) satisfy it.
type Session interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ Session = (*sql.DB)(nil)
	_ Session = (*sql.Conn)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// WithSession borrows a dedicated connection from db, runs fn with it and
// always returns the connection to the pool, including when fn fails or panics.
func WithSession(ctx context.Context, db *sql.DB, fn func(ctx context.Context, s Session) error) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release session: %w", cerr)
		}
	}()

	return fn(ctx, conn)
}

// WithTx begins a transaction on s, runs fn with the transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := database.WithTx(ctx, s, func(ctx context.Context, tx database.Querier) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, s Session, fn func(ctx context.Context, tx Querier) error) (err error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
