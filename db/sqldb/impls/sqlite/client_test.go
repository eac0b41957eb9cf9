package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeptools/gw-litesql/db/sqldb"
)

type book struct {
	ID     int64 `db:"id"`
	Title  string
	Author *string
	Pages  int
}

func setup(t *testing.T) (*sqldb.Session, sqldb.Client) {
	t.Helper()
	c, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	_, err = c.Exec(context.Background(), `CREATE TABLE books (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		author TEXT,
		pages INTEGER NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)
	return sqldb.NewSession(c), c
}

func TestNamedRoundTrip(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	id, err := s.InsertReturningID(ctx,
		"INSERT INTO books (title, author, pages) VALUES (:title, :author, :pages)",
		map[string]any{"title": "Dune", "author": "Herbert", "pages": 412})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	b, found, err := sqldb.QueryOne(ctx, s,
		"SELECT id, title, author, pages FROM books WHERE id = :id",
		map[string]any{"id": id}, sqldb.StructMapper[book]())
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, b.Author)
	assert.Equal(t, "Herbert", *b.Author)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, 412, b.Pages)
}

func TestColonEscapeAndQuotedMarkers(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	_, err := s.ExecUpdate(ctx,
		"INSERT INTO books (title, pages) VALUES ('ratio 1::2 :skip', :pages)",
		map[string]any{"pages": 3})
	require.NoError(t, err)

	titles, err := sqldb.FindAllPositional(ctx, s, "SELECT title FROM books WHERE pages = ?",
		func(row sqldb.Row) (string, error) {
			var title string
			err := row.Scan(&title)
			return title, err
		}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ratio 1::2 :skip"}, titles)
}

func TestExecBatch(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	counts, err := s.ExecBatch(ctx, "INSERT INTO books (title, pages) VALUES (:title, :pages)", []map[string]any{
		{"title": "a", "pages": 1},
		{"title": "b", "pages": 2},
		{"title": "c", "pages": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1}, counts)

	n, err := s.ExecUpdate(ctx, "UPDATE books SET pages = pages * 10 WHERE pages >= :min", map[string]any{"min": 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWithTx(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	errAbort := errors.New("abort")
	err := sqldb.WithTx(ctx, c, func(tx *sqldb.Session) error {
		if _, err := tx.ExecUpdate(ctx, "INSERT INTO books (title) VALUES (:t)", map[string]any{"t": "lost"}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	err = sqldb.WithTx(ctx, c, func(tx *sqldb.Session) error {
		if _, err := tx.ExecUpdate(ctx, "INSERT INTO books (title) VALUES (:t)", map[string]any{"t": "kept"}); err != nil {
			return err
		}
		if err := tx.Savepoint(ctx, "sp1"); err != nil {
			return err
		}
		if _, err := tx.ExecUpdate(ctx, "INSERT INTO books (title) VALUES (:t)", map[string]any{"t": "undone"}); err != nil {
			return err
		}
		return tx.RollbackTo(ctx, "sp1")
	})
	require.NoError(t, err)

	titles, err := sqldb.FindAll(ctx, s, "SELECT title FROM books ORDER BY id", nil,
		func(row sqldb.Row) (string, error) {
			var title string
			err := row.Scan(&title)
			return title, err
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, titles)
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	c := New(&sqldb.Conf{Type: DBType, Path: path})
	require.NoError(t, c.Init())
	defer func() { _ = c.Close() }()

	assert.Equal(t, "file:"+path+"?"+pragmas, c.GetDSN())
	assert.True(t, sqldb.IsHealthy(context.Background(), c))
}

func TestRegister(t *testing.T) {
	Register()
	c, err := sqldb.New(&sqldb.Conf{Type: DBType})
	require.NoError(t, err)
	require.NoError(t, c.Init())
	defer func() { _ = c.Close() }()
	assert.Equal(t, byte(0), c.PlaceholderPrefix())
}

type bookKey struct {
	ID int64
}

func TestExecWithGeneratedKeys(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()
	keyMapper := sqldb.StructMapper[bookKey]()

	keys, err := sqldb.ExecWithGeneratedKeys(ctx, s,
		"INSERT INTO books (title) VALUES (:title)", map[string]any{"title": "Emma"}, keyMapper)
	require.NoError(t, err)
	assert.Equal(t, []bookKey{{ID: 1}}, keys)

	keys, err = sqldb.ExecWithGeneratedKeys(ctx, s,
		"INSERT INTO books (title) VALUES (:a), (:b)", map[string]any{"a": "Persuasion", "b": "Sanditon"}, keyMapper)
	require.NoError(t, err)
	assert.Equal(t, []bookKey{{ID: 2}, {ID: 3}}, keys)

	ids, err := sqldb.ExecWithGeneratedKeysPositional(ctx, s,
		"INSERT INTO books (title, pages) VALUES (?, ?)",
		func(row sqldb.Row) (int64, error) {
			var id int64
			return id, row.Scan(&id)
		}, "Lady Susan", 80)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids)

	keys, err = sqldb.ExecWithGeneratedKeys(ctx, s,
		"UPDATE books SET pages = :pages", map[string]any{"pages": 1}, keyMapper)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestExecBatchWithGeneratedKeys(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()
	query := "INSERT INTO books (title, pages) VALUES (:title, :pages)"

	keys, err := sqldb.ExecBatchWithGeneratedKeys(ctx, s, query, []map[string]any{
		{"title": "Kim", "pages": 300},
		{"title": "Nostromo", "pages": 450},
	}, sqldb.StructMapper[bookKey]())
	require.NoError(t, err)
	assert.Equal(t, []bookKey{{ID: 1}, {ID: 2}}, keys)

	// every row is bound before anything executes
	_, err = sqldb.ExecBatchWithGeneratedKeys(ctx, s, query, []map[string]any{
		{"title": "Lost", "pages": 1},
		{"title": "Missing pages"},
	}, sqldb.StructMapper[bookKey]())
	require.ErrorIs(t, err, sqldb.ErrParameterNotSet)
	n, found, err := sqldb.QueryOnePositional(ctx, s, "SELECT COUNT(*) FROM books",
		func(row sqldb.Row) (int64, error) {
			var n int64
			return n, row.Scan(&n)
		})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2), n)
}
