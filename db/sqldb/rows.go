package sqldb

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Close() error
	Err() error
	NextResultSet() bool
}

// Row is a single-row result. Scan returns ErrNoRows when the query matched nothing.
type Row interface {
	Scan(dest ...any) error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}
