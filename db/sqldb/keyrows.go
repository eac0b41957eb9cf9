package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// GeneratedKeyColumn names the key column of backends reporting keys through LastInsertId.
const GeneratedKeyColumn = "id"

// WithReturning appends `RETURNING *` to query unless it already has a RETURNING clause.
func WithReturning(query string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(query), ";")
	if strings.Contains(strings.ToUpper(trimmed), "RETURNING") {
		return trimmed
	}
	return trimmed + " RETURNING *"
}

// IsInsert reports whether query is an INSERT statement.
func IsInsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT")
}

// KeyRows serves generated keys as a single-column result set.
type KeyRows struct {
	ids []int64
	cur int
}

var _ Rows = (*KeyRows)(nil)

// NewKeyRows returns rows of ids under GeneratedKeyColumn.
func NewKeyRows(ids []int64) *KeyRows {
	return &KeyRows{ids: ids, cur: -1}
}

// ConsecutiveKeys expands the LastInsertId of an n-row INSERT into every key.
// lastIsFirst is true for backends reporting the first row's key.
func ConsecutiveKeys(lastInsertID, n int64, lastIsFirst bool) []int64 {
	if n <= 0 {
		return nil
	}
	first := lastInsertID
	if !lastIsFirst {
		first = lastInsertID - n + 1
	}
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = first + int64(i)
	}
	return ids
}

func (r *KeyRows) Next() bool {
	if r.cur+1 >= len(r.ids) {
		return false
	}
	r.cur++
	return true
}

func (r *KeyRows) Scan(dest ...any) error {
	if r.cur < 0 || r.cur >= len(r.ids) {
		return errors.New("scan called without a current row")
	}
	if len(dest) != 1 {
		return fmt.Errorf("expected 1 destination for %s, got %d", GeneratedKeyColumn, len(dest))
	}
	id := r.ids[r.cur]
	switch d := dest[0].(type) {
	case *int64:
		*d = id
	case *int:
		*d = int(id)
	case *any:
		*d = id
	case sql.Scanner:
		return d.Scan(id)
	default:
		return fmt.Errorf("unsupported destination %T for %s", dest[0], GeneratedKeyColumn)
	}
	return nil
}

func (r *KeyRows) Columns() ([]string, error) { return []string{GeneratedKeyColumn}, nil }
func (r *KeyRows) Close() error               { return nil }
func (r *KeyRows) Err() error                 { return nil }
func (r *KeyRows) NextResultSet() bool        { return false }
