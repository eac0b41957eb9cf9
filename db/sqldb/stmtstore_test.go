package sqldb

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroup() GroupFS {
	return GroupFS{Group: "users", FS: fstest.MapFS{
		"sql/find.sql":     {Data: []byte("SELECT * FROM users WHERE id = :id")},
		"sql/find.pgsql":   {Data: []byte("SELECT * FROM users WHERE id = :id AND deleted_at IS NULL")},
		"sql/rename.sql":   {Data: []byte("UPDATE users SET name = :name WHERE id = :id")},
		"sql/by_org.mysql": {Data: []byte("SELECT * FROM users WHERE org = ?")},
		"sql/notes.txt":    {Data: []byte("not a statement")},
	}}
}

func TestStmtStoreDialectOverride(t *testing.T) {
	s := NewStmtStore("pgsql", '$')
	require.NoError(t, s.LoadGroups(testGroup()))

	assert.Equal(t, []string{"users.find", "users.rename"}, s.Keys())
	q, ok := s.SQL("users.find")
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL", q)
	assert.Equal(t, "UPDATE users SET name = $1 WHERE id = $2", s.MustSQL("users.rename"))
}

func TestStmtStoreAnonymousDialect(t *testing.T) {
	s := NewStmtStore("mysql", '?')
	require.NoError(t, s.LoadGroups(testGroup()))

	assert.Equal(t, []string{"users.by_org", "users.find", "users.rename"}, s.Keys())
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", s.MustSQL("users.find"))
	parsed, ok := s.Get("users.rename")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "id"}, parsed.Names())
}

func TestStmtStoreCollectsParseErrors(t *testing.T) {
	s := NewStmtStore("sqlite", 0)
	err := s.LoadGroups(GroupFS{Group: "bad", FS: fstest.MapFS{
		"sql/ok.sql":    {Data: []byte("SELECT 1")},
		"sql/mixed.sql": {Data: []byte("SELECT :a, ?")},
		"sql/space.sql": {Data: []byte("SELECT : a")},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.mixed")
	assert.Contains(t, err.Error(), "bad.space")
	assert.Equal(t, []string{"bad.ok"}, s.Keys())
}

func TestStmtStoreMissingDir(t *testing.T) {
	s := NewStmtStore("sqlite", 0)
	err := s.LoadGroups(GroupFS{Group: "empty", FS: fstest.MapFS{}})
	assert.Error(t, err)
}

func TestStmtStoreMustSQLPanics(t *testing.T) {
	s := NewStmtStore("sqlite", 0)
	assert.Panics(t, func() { s.MustSQL("nope.nope") })
	_, ok := s.SQL("nope.nope")
	assert.False(t, ok)
}
