package sqldb

import "context"

// Handle is implemented by pools, connections and transactions alike.
type Handle interface {
	// Exec executes SQL statement like INSERT, UPDATE, DELETE.
	Exec(ctx context.Context, query string, args ...any) (Result, error)

	QueryRows(ctx context.Context, query string, args ...any) (Rows, error) // Eager. Fail upfront on statement execution
	QueryRow(ctx context.Context, query string, args ...any) Row            // Lazy. only fails at Scan()

	Prepare(ctx context.Context, query string) (PreparedStmt, error)

	// InsertStmt - Single INSERT statement, placeholders only
	// to guarantee Result.LastInsertId() works for auto-increment `id`
	InsertStmt(ctx context.Context, query string, args ...any) (Result, error)

	// ExecBatch executes query once per argument row, in order, and returns the
	// affected-row count of each execution as reported by the backend.
	ExecBatch(ctx context.Context, query string, argRows [][]any) ([]int64, error)

	// ExecGeneratedKeys executes a data-changing statement and returns the keys it generated.
	// Backends with RETURNING yield every column of the changed rows; the others yield one
	// GeneratedKeyColumn per inserted row.
	ExecGeneratedKeys(ctx context.Context, query string, args ...any) (Rows, error)
}
