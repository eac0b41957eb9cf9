package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"github.com/zeptools/gw-litesql/db/sqldb"
)

// PreparedStmt is a named server-side statement pinned to one connection.
type PreparedStmt struct {
	conn     *pgx.Conn
	release  func()
	stmtName string
}

// Ensure pgsql.PreparedStmt implements sqldb.PreparedStmt interface
var _ sqldb.PreparedStmt = (*PreparedStmt)(nil)

func (p *PreparedStmt) Query(ctx context.Context, args ...any) (sqldb.Rows, error) {
	rows, err := p.conn.Query(ctx, p.stmtName, args...)
	if err != nil {
		return nil, err
	}
	return &Rows{current: rows}, nil
}

func (p *PreparedStmt) QueryRow(ctx context.Context, args ...any) sqldb.Row {
	return &Row{row: p.conn.QueryRow(ctx, p.stmtName, args...)}
}

func (p *PreparedStmt) Exec(ctx context.Context, args ...any) (sqldb.Result, error) {
	tag, err := p.conn.Exec(ctx, p.stmtName, args...)
	if err != nil {
		return nil, err
	}
	return &Result{tag: tag}, nil
}

func (p *PreparedStmt) Close() error {
	defer p.release()
	if err := p.conn.Deallocate(context.Background(), p.stmtName); err != nil {
		log.Warnf("[pgsql] deallocate %s failed: %v", p.stmtName, err)
		return err
	}
	return nil
}
