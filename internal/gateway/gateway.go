// Package gateway is the only component that talks to the relational store.
// It executes SQL text verbatim and returns a column-ordered result set.
package gateway

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes the rest of the service cares about.
const (
	CodeUndefinedTable = "42P01"
	CodeSyntaxError    = "42601"
)

// Gateway executes one SQL statement and returns its rows.
type Gateway interface {
	Query(ctx context.Context, query string) (*Result, error)
}

// QueryError carries the database-reported message of a failed statement.
type QueryError struct {
	Message string
	Code    string // SQLSTATE, empty when the driver reported none
	Err     error
}

func (e *QueryError) Error() string { return e.Message }

func (e *QueryError) Unwrap() error { return e.Err }

func newQueryError(err error) *QueryError {
	qe := &QueryError{Message: err.Error(), Err: err}

	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		qe.Code = pgErr.Code
	case errors.As(err, &pqErr):
		qe.Code = string(pqErr.Code)
	}
	return qe
}

// HasCode reports whether err is a QueryError with the given SQLSTATE.
func HasCode(err error, code string) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.Code == code
}

type SQLGateway struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLGateway {
	return &SQLGateway{db: db}
}

// Query runs the statement on a connection held for the duration of the
// call. The statement is not parameterized or inspected in any way.
func (g *SQLGateway) Query(ctx context.Context, query string) (*Result, error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return nil, newQueryError(err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, newQueryError(err)
	}
	defer rows.Close()

	res, err := collectRows(rows)
	if err != nil {
		return nil, newQueryError(err)
	}
	return res, nil
}

func (g *SQLGateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

func collectRows(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Columns: cols,
		Types:   make([]string, len(cols)),
		Rows:    []Row{},
	}
	for i, ct := range colTypes {
		res.Types[i] = ct.DatabaseTypeName()
	}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}
