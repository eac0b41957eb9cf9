package sqldb

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithReturning(t *testing.T) {
	for in, want := range map[string]string{
		"INSERT INTO t (a) VALUES ($1)":                "INSERT INTO t (a) VALUES ($1) RETURNING *",
		"  INSERT INTO t (a) VALUES ($1);  ":           "INSERT INTO t (a) VALUES ($1) RETURNING *",
		"INSERT INTO t (a) VALUES ($1) returning id":   "INSERT INTO t (a) VALUES ($1) returning id",
		"UPDATE t SET a = $1 WHERE b = $2 RETURNING a": "UPDATE t SET a = $1 WHERE b = $2 RETURNING a",
	} {
		assert.Equal(t, want, WithReturning(in), in)
	}
}

func TestConsecutiveKeys(t *testing.T) {
	assert.Equal(t, []int64{10, 11, 12}, ConsecutiveKeys(10, 3, true))
	assert.Equal(t, []int64{8, 9, 10}, ConsecutiveKeys(10, 3, false))
	assert.Nil(t, ConsecutiveKeys(10, 0, false))
}

func TestKeyRows(t *testing.T) {
	rows := NewKeyRows([]int64{4, 5})
	var id int64
	assert.Error(t, rows.Scan(&id))

	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&id))
	assert.Equal(t, int64(4), id)

	require.True(t, rows.Next())
	var n sql.NullInt64
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, sql.NullInt64{Int64: 5, Valid: true}, n)
	assert.Error(t, rows.Scan(&id, &id))

	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{GeneratedKeyColumn}, cols)
}
