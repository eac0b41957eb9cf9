package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeptools/gw-litesql/db/sqldb"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Handle struct {
	q querier
	// conn returns the connection prepared statements live on and its release func
	conn func(ctx context.Context) (*pgx.Conn, func(), error)
}

var _ sqldb.Handle = (*Handle)(nil)

func newPoolHandle(pool *pgxpool.Pool) *Handle {
	return &Handle{
		q: pool,
		conn: func(ctx context.Context) (*pgx.Conn, func(), error) {
			c, err := pool.Acquire(ctx)
			if err != nil {
				return nil, nil, err
			}
			return c.Conn(), c.Release, nil
		},
	}
}

func newTxHandle(tx pgx.Tx) *Handle {
	return &Handle{
		q: tx,
		conn: func(context.Context) (*pgx.Conn, func(), error) {
			// tx already owns the connection
			return tx.Conn(), func() {}, nil
		},
	}
}

func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	tag, err := h.q.Exec(ctx, query, args...)
	// NOTE: We can process a DBMS-specific error to produce a better abstracted error
	if err != nil {
		return nil, err
	}
	return &Result{tag: tag}, nil
}

func (h *Handle) QueryRows(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	rows, err := h.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Rows{current: rows}, nil
}

func (h *Handle) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	return &Row{row: h.q.QueryRow(ctx, query, args...)}
}

func (h *Handle) InsertStmt(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "INSERT") {
		return nil, fmt.Errorf("InsertStmt must start with INSERT")
	}
	// append RETURNING id if missing
	if !strings.Contains(strings.ToUpper(trimmed), "RETURNING") {
		var id int64
		if err := h.q.QueryRow(ctx, trimmed+" RETURNING id", args...).Scan(&id); err != nil {
			return nil, err
		}
		return &Result{lastInsertID: id, tag: pgconn.NewCommandTag("INSERT 0 1")}, nil
	}
	tag, err := h.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{tag: tag}, nil
}

// ExecGeneratedKeys returns the changed rows through RETURNING.
func (h *Handle) ExecGeneratedKeys(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	return h.QueryRows(ctx, sqldb.WithReturning(query), args...)
}

func (h *Handle) Prepare(ctx context.Context, query string) (sqldb.PreparedStmt, error) {
	conn, release, err := h.conn(ctx)
	if err != nil {
		return nil, err
	}
	stmtName := "stmt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err = conn.Prepare(ctx, stmtName, query); err != nil {
		release()
		return nil, err
	}
	return &PreparedStmt{conn: conn, release: release, stmtName: stmtName}, nil
}

// ExecBatch queues every argument row into one pgx.Batch, sent in a single round trip.
func (h *Handle) ExecBatch(ctx context.Context, query string, argRows [][]any) (counts []int64, err error) {
	b := &pgx.Batch{}
	for _, args := range argRows {
		b.Queue(query, args...)
	}
	br := h.q.SendBatch(ctx, b)
	defer func() {
		if cerr := br.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	counts = make([]int64, 0, len(argRows))
	for i := range argRows {
		tag, err := br.Exec()
		if err != nil {
			return counts, fmt.Errorf("batch row %d: %w", i, err)
		}
		counts = append(counts, tag.RowsAffected())
	}
	return counts, nil
}
