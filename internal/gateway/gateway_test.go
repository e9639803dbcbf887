package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*SQLGateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func col(name, dbType string, sample any) *sqlmock.Column {
	return sqlmock.NewColumn(name).OfType(dbType, sample)
}

func marshal(t *testing.T, res *Result) string {
	t.Helper()
	b, err := json.Marshal(res)
	require.NoError(t, err)
	return string(b)
}

func TestQuery_SelectLiteral(t *testing.T) {
	gw, mock := newMock(t)

	mock.ExpectQuery("SELECT 1 AS x").WillReturnRows(
		sqlmock.NewRowsWithColumnDefinition(col("x", "INT4", int64(0))).AddRow(int64(1)),
	)

	res, err := gw.Query(context.Background(), "SELECT 1 AS x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, res.Columns)
	assert.Equal(t, 1, res.Len())
	assert.JSONEq(t, `[{"x":1}]`, marshal(t, res))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_PreservesColumnAndRowOrder(t *testing.T) {
	gw, mock := newMock(t)

	rows := sqlmock.NewRowsWithColumnDefinition(
		col("zeta", "TEXT", ""),
		col("alpha", "INT8", int64(0)),
		col("mid", "FLOAT8", float64(0)),
	).
		AddRow("c", int64(3), 3.5).
		AddRow("a", int64(1), 1.5).
		AddRow("b", int64(2), 2.5)
	mock.ExpectQuery("SELECT * FROM t").WillReturnRows(rows)

	res, err := gw.Query(context.Background(), "SELECT * FROM t")
	require.NoError(t, err)

	// Exact string comparison: key order matters.
	assert.Equal(t,
		`[{"zeta":"c","alpha":3,"mid":3.5},{"zeta":"a","alpha":1,"mid":1.5},{"zeta":"b","alpha":2,"mid":2.5}]`,
		marshal(t, res))
}

func TestQuery_ValueMapping(t *testing.T) {
	gw, mock := newMock(t)

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRowsWithColumnDefinition(
		col("Date", "DATE", time.Time{}),
		col("loaded_at", "TIMESTAMPTZ", time.Time{}),
		col("Index_Value", "FLOAT8", float64(0)),
		col("raw", "NUMERIC", []byte{}),
	).
		AddRow(day, ts, nil, []byte("12.50")).
		AddRow(day, ts, math.NaN(), []byte("7"))
	mock.ExpectQuery("SELECT mapped").WillReturnRows(rows)

	res, err := gw.Query(context.Background(), "SELECT mapped")
	require.NoError(t, err)

	v, ok := res.Value(0, "raw")
	require.True(t, ok)
	assert.Equal(t, "12.50", v, "[]byte values become strings")

	assert.Equal(t,
		`[{"Date":"2024-01-15","loaded_at":"2024-01-15T13:30:00Z","Index_Value":null,"raw":"12.50"},`+
			`{"Date":"2024-01-15","loaded_at":"2024-01-15T13:30:00Z","Index_Value":null,"raw":"7"}]`,
		marshal(t, res))
}

func TestQuery_EmptyResult(t *testing.T) {
	gw, mock := newMock(t)

	mock.ExpectQuery("SELECT x FROM empty").WillReturnRows(
		sqlmock.NewRowsWithColumnDefinition(col("x", "INT4", int64(0))),
	)

	res, err := gw.Query(context.Background(), "SELECT x FROM empty")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, `[]`, marshal(t, res))
}

func TestQuery_DuplicateColumnsLastValueWins(t *testing.T) {
	gw, mock := newMock(t)

	mock.ExpectQuery("SELECT dup").WillReturnRows(
		sqlmock.NewRowsWithColumnDefinition(
			col("a", "INT4", int64(0)),
			col("b", "INT4", int64(0)),
			col("a", "INT4", int64(0)),
		).AddRow(int64(1), int64(2), int64(3)),
	)

	res, err := gw.Query(context.Background(), "SELECT dup")
	require.NoError(t, err)
	assert.Equal(t, `[{"a":3,"b":2}]`, marshal(t, res))

	v, ok := res.Value(0, "a")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
}

func TestQuery_PgxErrorCarriesSQLState(t *testing.T) {
	gw, mock := newMock(t)

	pgErr := &pgconn.PgError{Severity: "ERROR", Code: CodeSyntaxError, Message: `syntax error at or near "SELEC"`}
	mock.ExpectQuery("SELEC 1").WillReturnError(pgErr)

	_, err := gw.Query(context.Background(), "SELEC 1")
	require.Error(t, err)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, CodeSyntaxError, qe.Code)
	assert.Contains(t, qe.Message, "syntax error")
	assert.True(t, HasCode(err, CodeSyntaxError))
	assert.False(t, HasCode(err, CodeUndefinedTable))
	assert.ErrorIs(t, err, pgErr)
}

func TestQuery_LibPqErrorCarriesSQLState(t *testing.T) {
	gw, mock := newMock(t)

	mock.ExpectQuery("SELECT * FROM missing").WillReturnError(&pq.Error{
		Code:    pq.ErrorCode(CodeUndefinedTable),
		Message: `relation "missing" does not exist`,
	})

	_, err := gw.Query(context.Background(), "SELECT * FROM missing")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeUndefinedTable))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestQuery_ScanErrorIsQueryError(t *testing.T) {
	gw, mock := newMock(t)

	mock.ExpectQuery("SELECT broken").WillReturnRows(
		sqlmock.NewRowsWithColumnDefinition(col("x", "INT4", int64(0))).
			AddRow(int64(1)).
			RowError(0, errors.New("connection reset by peer")),
	)

	_, err := gw.Query(context.Background(), "SELECT broken")
	require.Error(t, err)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "connection reset by peer", qe.Message)
	assert.Empty(t, qe.Code)
}

func TestQuery_ClosedPool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	db.Close()

	_, err = New(db).Query(context.Background(), "SELECT 1")
	require.Error(t, err)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Contains(t, qe.Message, "closed")
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, New(db).Ping(context.Background()))
}
