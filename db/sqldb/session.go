package sqldb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
)

// Session runs statements written with `:name` or `?` parameters against a Handle.
//
// Named methods take a map keyed by parameter name. Methods with the Positional
// suffix take values in marker order. Both render the statement in the
// placeholder style of Prefix before handing it to the driver.
type Session struct {
	Handle Handle
	Prefix byte
}

// NewSession returns a Session on the client's pool.
func NewSession(c Client) *Session {
	return &Session{Handle: c, Prefix: c.PlaceholderPrefix()}
}

// RowMapper converts the current row into a T.
type RowMapper[T any] func(row Row) (T, error)

func (s *Session) named(query string, values map[string]any) (string, []any, error) {
	parsed, err := ParseStatement(query)
	if err != nil {
		return "", nil, err
	}
	args, err := NamedArgs(parsed, values)
	if err != nil {
		return "", nil, err
	}
	return parsed.Render(s.Prefix), args, nil
}

func (s *Session) positional(query string, args []any) (string, []any, error) {
	coerced, err := PositionalArgs(args...)
	if err != nil {
		return "", nil, err
	}
	return RenderPositional(query, s.Prefix), coerced, nil
}

// ExecUpdate executes a named-parameter statement and returns the affected row count.
func (s *Session) ExecUpdate(ctx context.Context, query string, values map[string]any) (int64, error) {
	q, args, err := s.named(query, values)
	if err != nil {
		return 0, err
	}
	return rowsAffected(s.Handle.Exec(ctx, q, args...))
}

// ExecUpdatePositional executes a positional statement and returns the affected row count.
func (s *Session) ExecUpdatePositional(ctx context.Context, query string, args ...any) (int64, error) {
	q, coerced, err := s.positional(query, args)
	if err != nil {
		return 0, err
	}
	return rowsAffected(s.Handle.Exec(ctx, q, coerced...))
}

func rowsAffected(res Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertReturningID executes a single named-parameter INSERT and returns the generated `id`.
func (s *Session) InsertReturningID(ctx context.Context, query string, values map[string]any) (int64, error) {
	q, args, err := s.named(query, values)
	if err != nil {
		return 0, err
	}
	res, err := s.Handle.InsertStmt(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ExecWithGeneratedKeys executes a named-parameter statement and maps every key it generated.
func ExecWithGeneratedKeys[T any](ctx context.Context, s *Session, query string, values map[string]any, mapper RowMapper[T]) ([]T, error) {
	q, args, err := s.named(query, values)
	if err != nil {
		return nil, err
	}
	return generatedKeys(ctx, s.Handle, q, args, mapper)
}

// ExecWithGeneratedKeysPositional is ExecWithGeneratedKeys for positional statements.
func ExecWithGeneratedKeysPositional[T any](ctx context.Context, s *Session, query string, mapper RowMapper[T], args ...any) ([]T, error) {
	q, coerced, err := s.positional(query, args)
	if err != nil {
		return nil, err
	}
	return generatedKeys(ctx, s.Handle, q, coerced, mapper)
}

// ExecBatchWithGeneratedKeys executes a named-parameter statement once per value map
// and returns the keys of all executions in order. Every value map is bound before
// the first execution.
func ExecBatchWithGeneratedKeys[T any](ctx context.Context, s *Session, query string, batch []map[string]any, mapper RowMapper[T]) ([]T, error) {
	parsed, err := ParseStatement(query)
	if err != nil {
		return nil, err
	}
	argRows := make([][]any, len(batch))
	for i, values := range batch {
		if argRows[i], err = NamedArgs(parsed, values); err != nil {
			return nil, fmt.Errorf("batch row %d: %w", i, err)
		}
	}
	q := parsed.Render(s.Prefix)
	items := make([]T, 0, len(batch))
	for i, args := range argRows {
		keys, err := generatedKeys(ctx, s.Handle, q, args, mapper)
		if err != nil {
			return items, fmt.Errorf("batch row %d: %w", i, err)
		}
		items = append(items, keys...)
	}
	return items, nil
}

func generatedKeys[T any](ctx context.Context, h Handle, query string, args []any, mapper RowMapper[T]) ([]T, error) {
	rows, err := h.ExecGeneratedKeys(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, mapper)
}

// ExecBatch executes a named-parameter statement once per value map.
// The returned counts are reported by the backend unchanged; some drivers
// report a negative sentinel instead of the real count.
func (s *Session) ExecBatch(ctx context.Context, query string, batch []map[string]any) ([]int64, error) {
	parsed, err := ParseStatement(query)
	if err != nil {
		return nil, err
	}
	argRows := make([][]any, len(batch))
	set := NewArgSet(parsed.ParamCount())
	for i, values := range batch {
		set.Clear()
		if err = BindNamed(parsed, values, set); err != nil {
			return nil, err
		}
		if argRows[i], err = set.Args(); err != nil {
			return nil, fmt.Errorf("batch row %d: %w", i, err)
		}
	}
	return s.Handle.ExecBatch(ctx, parsed.Render(s.Prefix), argRows)
}

// ExecBatchPositional executes a positional statement once per argument row.
func (s *Session) ExecBatchPositional(ctx context.Context, query string, batch [][]any) ([]int64, error) {
	argRows := make([][]any, len(batch))
	for i, row := range batch {
		coerced, err := PositionalArgs(row...)
		if err != nil {
			return nil, fmt.Errorf("batch row %d: %w", i, err)
		}
		argRows[i] = coerced
	}
	return s.Handle.ExecBatch(ctx, RenderPositional(query, s.Prefix), argRows)
}

// UsePrepared prepares a positional statement, passes it to fn and closes it afterwards.
func (s *Session) UsePrepared(ctx context.Context, query string, fn func(PreparedStmt) error) (err error) {
	stmt, err := s.Handle.Prepare(ctx, RenderPositional(query, s.Prefix))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stmt.Close())
	}()
	return fn(stmt)
}

// UseNamed prepares a named-parameter statement, passes it to fn and closes it afterwards.
func (s *Session) UseNamed(ctx context.Context, query string, fn func(*NamedStmt) error) (err error) {
	stmt, err := PrepareNamed(ctx, s.Handle, s.Prefix, query)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stmt.Close())
	}()
	return fn(stmt)
}

var savepointName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (s *Session) savepointExec(ctx context.Context, stmt, name string) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	_, err := s.Handle.Exec(ctx, stmt+" "+name)
	return err
}

// Savepoint marks a point inside the current transaction that RollbackTo can return to.
func (s *Session) Savepoint(ctx context.Context, name string) error {
	return s.savepointExec(ctx, "SAVEPOINT", name)
}

func (s *Session) RollbackTo(ctx context.Context, name string) error {
	return s.savepointExec(ctx, "ROLLBACK TO SAVEPOINT", name)
}

func (s *Session) ReleaseSavepoint(ctx context.Context, name string) error {
	return s.savepointExec(ctx, "RELEASE SAVEPOINT", name)
}

// QueryOne maps the first row of a named-parameter query.
// found is false when the query returned no rows.
func QueryOne[T any](ctx context.Context, s *Session, query string, values map[string]any, mapper RowMapper[T]) (item T, found bool, err error) {
	q, args, err := s.named(query, values)
	if err != nil {
		return item, false, err
	}
	return firstRow(ctx, s.Handle, q, args, mapper)
}

// QueryOnePositional is QueryOne for positional statements.
func QueryOnePositional[T any](ctx context.Context, s *Session, query string, mapper RowMapper[T], args ...any) (item T, found bool, err error) {
	q, coerced, err := s.positional(query, args)
	if err != nil {
		return item, false, err
	}
	return firstRow(ctx, s.Handle, q, coerced, mapper)
}

// FindAll maps every row of a named-parameter query.
func FindAll[T any](ctx context.Context, s *Session, query string, values map[string]any, mapper RowMapper[T]) ([]T, error) {
	q, args, err := s.named(query, values)
	if err != nil {
		return nil, err
	}
	return allRows(ctx, s.Handle, q, args, mapper)
}

// FindAllPositional is FindAll for positional statements.
func FindAllPositional[T any](ctx context.Context, s *Session, query string, mapper RowMapper[T], args ...any) ([]T, error) {
	q, coerced, err := s.positional(query, args)
	if err != nil {
		return nil, err
	}
	return allRows(ctx, s.Handle, q, coerced, mapper)
}

func firstRow[T any](ctx context.Context, h Handle, query string, args []any, mapper RowMapper[T]) (item T, found bool, err error) {
	rows, err := h.QueryRows(ctx, query, args...)
	if err != nil {
		return item, false, err
	}
	defer closeRows(rows)
	if !rows.Next() {
		return item, false, rows.Err()
	}
	item, err = mapper(rows)
	if err != nil {
		return item, false, err
	}
	return item, true, nil
}

func allRows[T any](ctx context.Context, h Handle, query string, args []any, mapper RowMapper[T]) ([]T, error) {
	rows, err := h.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, mapper)
}

func mapRows[T any](rows Rows, mapper RowMapper[T]) ([]T, error) {
	defer closeRows(rows)
	items := make([]T, 0)
	for rows.Next() {
		item, err := mapper(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during iterating rows: %w", err)
	}
	return items, nil
}

func closeRows(rows Rows) {
	if err := rows.Close(); err != nil {
		log.Warnf("rows.Close() failed: %v", err)
	}
}

// WithTx runs fn inside a transaction on c. The transaction is committed when fn
// returns nil and rolled back when fn returns an error or panics.
func WithTx(ctx context.Context, c Client, fn func(s *Session) error) (err error) {
	tx, err := c.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Errorf("[%s] rollback after panic failed: %v", dbTypeOf(c), rbErr)
			}
			panic(p)
		}
	}()

	if err = fn(&Session{Handle: tx, Prefix: c.PlaceholderPrefix()}); err != nil {
		log.Debugf("[%s] rolling back transaction: %v", dbTypeOf(c), err)
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// WithAutoCommit runs fn on a Session over the client's pool, each statement committing on its own.
func WithAutoCommit(_ context.Context, c Client, fn func(s *Session) error) error {
	return fn(NewSession(c))
}

// IsHealthy reports whether the client can reach its database.
func IsHealthy(ctx context.Context, c Client) bool {
	if err := c.Ping(ctx); err != nil {
		log.Warnf("[%s] ping failed: %v", dbTypeOf(c), err)
		return false
	}
	return true
}

func dbTypeOf(c Client) string {
	if conf := c.GetConf(); conf != nil {
		return conf.Type
	}
	return "sqldb"
}
