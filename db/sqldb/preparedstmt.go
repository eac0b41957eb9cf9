package sqldb

import "context"

type PreparedStmt interface {
	Query(ctx context.Context, args ...any) (Rows, error)
	QueryRow(ctx context.Context, args ...any) Row
	Exec(ctx context.Context, args ...any) (Result, error)
	Close() error
}
