package stdsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/zeptools/gw-litesql/db/sqldb"
)

// conn is satisfied by both *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type Handle struct {
	conn conn
	// ReturningID makes InsertStmt append `RETURNING id` instead of relying on LastInsertId,
	// and ExecGeneratedKeys append `RETURNING *`.
	ReturningID bool
	// LastInsertIDFirst: LastInsertId reports the first row of a multi-row INSERT, not the last.
	LastInsertIDFirst bool
}

// Ensure stdsql.Handle implements sqldb.Handle interface
var _ sqldb.Handle = (*Handle)(nil)

// NewHandle wraps a *sql.DB or *sql.Tx.
func NewHandle(c conn, returningID bool) *Handle {
	return &Handle{conn: c, ReturningID: returningID}
}

func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	result, err := h.conn.ExecContext(ctx, query, args...)
	// NOTE: We can process a DBMS-specific error to produce a better abstracted error
	if err != nil {
		return nil, err
	}
	return &Result{result: result}, nil
}

func (h *Handle) QueryRows(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	rows, err := h.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (h *Handle) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	return &Row{row: h.conn.QueryRowContext(ctx, query, args...)}
}

func (h *Handle) InsertStmt(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "INSERT") {
		return nil, fmt.Errorf("InsertStmt must start with INSERT")
	}
	if h.ReturningID && !strings.Contains(strings.ToUpper(trimmed), "RETURNING") {
		var id int64
		if err := h.conn.QueryRowContext(ctx, trimmed+" RETURNING id", args...).Scan(&id); err != nil {
			return nil, err
		}
		return &Result{lastInsertID: id, affected: 1}, nil
	}
	result, err := h.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{result: result}, nil
}

func (h *Handle) Prepare(ctx context.Context, query string) (sqldb.PreparedStmt, error) {
	stmt, err := h.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &PreparedStmt{stmt: stmt}, nil
}

// ExecBatch prepares query once and executes it for every argument row.
// database/sql has no batch protocol, so counts come from each execution.
func (h *Handle) ExecBatch(ctx context.Context, query string, argRows [][]any) (counts []int64, err error) {
	stmt, err := h.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, stmt.Close())
	}()
	counts = make([]int64, 0, len(argRows))
	for i, args := range argRows {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return counts, fmt.Errorf("batch row %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return counts, err
		}
		counts = append(counts, n)
	}
	return counts, nil
}

// ExecGeneratedKeys returns the changed rows via RETURNING when the dialect has it.
// Otherwise only INSERT generates keys, expanded from LastInsertId and RowsAffected.
func (h *Handle) ExecGeneratedKeys(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	if h.ReturningID {
		return h.QueryRows(ctx, sqldb.WithReturning(query), args...)
	}
	result, err := h.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if !sqldb.IsInsert(query) {
		return sqldb.NewKeyRows(nil), nil
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return sqldb.NewKeyRows(nil), nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return sqldb.NewKeyRows(sqldb.ConsecutiveKeys(id, n, h.LastInsertIDFirst)), nil
}
