package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"userapi/internal/database"
	"userapi/internal/repository"
)

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Assignment sets one column to a value in an UPDATE statement.
type Assignment struct {
	Column string
	Value  any
}

// Mapping describes how entity E is persisted and how its payloads turn into query arguments.
type Mapping[E, C, U any] struct {
	// Entity is the name used in error messages, e.g. "User".
	Entity string
	// Table is the table name, optionally schema qualified: "user" or "public.user".
	Table string
	// ID is the integer primary key column, assigned by the database.
	ID string
	// Columns are the business columns. Scan reads ID followed by Columns in this order.
	Columns []string

	Scan func(s Scanner) (E, error)
	// CreateValues returns one value per column, in Columns order.
	CreateValues func(data C) []any
	// UpdateValues returns assignments for the fields present in data only.
	UpdateValues func(data U) []Assignment
}

// Repository is a PostgreSQL implementation of repository.CRUD for any entity described by a Mapping.
// It holds no connection; every call runs on the session it is given. Safe for concurrent use.
type Repository[E, C, U any] struct {
	mapping Mapping[E, C, U]

	table     string
	id        string
	returning string

	selectByID string
	selectMany string
	insert     string
	exists     string
	delete     string
}

// New builds a repository for the given mapping. Statements are rendered once here.
func New[E, C, U any](m Mapping[E, C, U]) *Repository[E, C, U] {
	r := &Repository[E, C, U]{
		mapping: m,
		table:   pgx.Identifier(strings.Split(m.Table, ".")).Sanitize(),
		id:      quote(m.ID),
	}

	columns := make([]string, len(m.Columns))
	placeholders := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		columns[i] = quote(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	r.returning = strings.Join(append([]string{r.id}, columns...), ", ")

	r.selectByID = fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", r.returning, r.table, r.id)
	r.selectMany = fmt.Sprintf("SELECT %s FROM %s LIMIT $1 OFFSET $2", r.returning, r.table)
	r.insert = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), r.returning)
	r.exists = fmt.Sprintf("SELECT 1 FROM %s WHERE %s = $1", r.table, r.id)
	r.delete = fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.table, r.id)
	return r
}

// ReadByID fetches a single row by id. A missing row is reported through found, not err.
func (r *Repository[E, C, U]) ReadByID(ctx context.Context, s database.Session, id int64) (E, bool, error) {
	var zero E
	e, err := r.mapping.Scan(s.QueryRowContext(ctx, r.selectByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, r.fail("read", err)
	}
	return e, true, nil
}

// ReadMany returns a LIMIT/OFFSET window in storage order.
func (r *Repository[E, C, U]) ReadMany(ctx context.Context, s database.Session, limit, offset int) ([]E, error) {
	rows, err := s.QueryContext(ctx, r.selectMany, limit, offset)
	if err != nil {
		return nil, r.fail("read", err)
	}
	defer rows.Close()

	items := make([]E, 0)
	for rows.Next() {
		e, err := r.mapping.Scan(rows)
		if err != nil {
			return nil, r.fail("read", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("read", err)
	}
	return items, nil
}

// Create inserts a row and returns it as stored, inside its own transaction.
func (r *Repository[E, C, U]) Create(ctx context.Context, s database.Session, data C) (E, error) {
	var out E
	values := r.mapping.CreateValues(data)
	err := database.WithTx(ctx, s, func(ctx context.Context, tx database.Querier) error {
		var err error
		out, err = r.mapping.Scan(tx.QueryRowContext(ctx, r.insert, values...))
		return err
	})
	if err != nil {
		var zero E
		return zero, r.fail("create", err)
	}
	return out, nil
}

// Update applies the present fields of data to the row with id and returns the row after the change.
func (r *Repository[E, C, U]) Update(ctx context.Context, s database.Session, data U, id int64) (E, bool, error) {
	var zero E
	sets := r.mapping.UpdateValues(data)
	if len(sets) == 0 {
		return r.ReadByID(ctx, s, id)
	}

	parts := make([]string, len(sets))
	args := make([]any, 0, len(sets)+1)
	for i, a := range sets {
		parts[i] = fmt.Sprintf("%s = $%d", quote(a.Column), i+1)
		args = append(args, a.Value)
	}
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		r.table, strings.Join(parts, ", "), r.id, len(args), r.returning)

	var out E
	found := true
	err := database.WithTx(ctx, s, func(ctx context.Context, tx database.Querier) error {
		e, err := r.mapping.Scan(tx.QueryRowContext(ctx, q, args...))
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		out = e
		return err
	})
	if err != nil {
		return zero, false, r.fail("update", err)
	}
	if !found {
		return zero, false, nil
	}
	return out, true, nil
}

// Remove deletes the row with id. The existence check and the delete share one transaction;
// an *repository.ObjectNotFoundError is returned before any delete is issued.
func (r *Repository[E, C, U]) Remove(ctx context.Context, s database.Session, id int64) error {
	err := database.WithTx(ctx, s, func(ctx context.Context, tx database.Querier) error {
		var one int
		if err := tx.QueryRowContext(ctx, r.exists, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &repository.ObjectNotFoundError{Entity: r.mapping.Entity, ID: id}
			}
			return err
		}
		_, err := tx.ExecContext(ctx, r.delete, id)
		return err
	})

	var nf *repository.ObjectNotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	if err != nil {
		return r.fail("remove", err)
	}
	return nil
}

func (r *Repository[E, C, U]) fail(op string, err error) error {
	return &repository.PersistenceError{Op: op, Entity: r.mapping.Entity, Err: err}
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
