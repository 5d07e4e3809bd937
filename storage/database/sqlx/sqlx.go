// Package sqlxrepos implements the domain repositories on Postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// columns lists a table's columns in the order its model declares them.
type columns []string

func (c columns) String() string { return strings.Join(c, ", ") }

// insert renders a named INSERT of every column.
func (c columns) insert(table string) string {
	return "INSERT INTO " + table + " (" + c.String() + ") VALUES (:" + strings.Join(c, ", :") + ")"
}

// update renders a named UPDATE of every column but id and created_at.
func (c columns) update(table string) string {
	sets := make([]string, 0, len(c))
	for _, col := range c {
		if col != "id" && col != "created_at" {
			sets = append(sets, col+" = :"+col)
		}
	}
	return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE id = :id"
}

func (c columns) selectFrom(table string) string {
	return "SELECT " + c.String() + " FROM " + table
}

// where accumulates AND-ed conditions with `?` bindvars; IN clauses are expanded by sqlx.In.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) and(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// in restricts `column` to `vals`; an empty set matches nothing.
func (w *where) in(column string, vals []string) {
	if len(vals) == 0 {
		w.conds = append(w.conds, "FALSE")
		return
	}
	w.and(column+"::text IN (?)", vals)
}

// build appends the conditions and `suffix` (ORDER BY, LIMIT...) to `query` and rebinds it for `db`.
func (w *where) build(db *sqlx.DB, query, suffix string) (string, []interface{}, error) {
	if len(w.conds) > 0 {
		query += " WHERE " + strings.Join(w.conds, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	q, args, err := sqlx.In(query, w.args...)
	if err != nil {
		return "", nil, errors.Wrap(err, "building query")
	}
	return db.Rebind(q), args, nil
}

func selectWhere[T any](ctx context.Context, db *sqlx.DB, w *where, query, suffix, msg string) ([]T, error) {
	q, args, err := w.build(db, query, suffix)
	if err != nil {
		return nil, err
	}
	rows := make([]T, 0)
	if err = db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, msg)
	}
	return rows, nil
}

// getByID loads the row `id` of `table`; unknown (or malformed) ids return `notFound`.
func getByID[T any](ctx context.Context, db *sqlx.DB, cols columns, table, id string, notFound error) (T, error) {
	var row T
	if _, err := uuid.Parse(id); err != nil {
		return row, notFound
	}
	err := db.GetContext(ctx, &row, cols.selectFrom(table)+" WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, notFound
		}
		return row, errors.Wrapf(err, "getting %s", table)
	}
	return row, nil
}

type namedExecer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

func insertRow(ctx context.Context, exec namedExecer, cols columns, table string, row interface{}) error {
	if _, err := exec.NamedExecContext(ctx, cols.insert(table), row); err != nil {
		return errors.Wrapf(err, "inserting %s", table)
	}
	return nil
}

func updateRow(ctx context.Context, exec namedExecer, cols columns, table string, row interface{}, notFound error) error {
	res, err := exec.NamedExecContext(ctx, cols.update(table), row)
	if err != nil {
		return errors.Wrapf(err, "updating %s", table)
	}
	return checkAffected(res, notFound)
}

func deleteByID(ctx context.Context, db *sqlx.DB, table, id string, notFound error) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound
	}
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return errors.Wrapf(err, "deleting %s", table)
	}
	return checkAffected(res, notFound)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
