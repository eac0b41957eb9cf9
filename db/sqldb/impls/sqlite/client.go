package sqlite

import (
	"github.com/zeptools/gw-litesql/db/sqldb"
	"github.com/zeptools/gw-litesql/db/sqldb/impls/stdsql"

	_ "modernc.org/sqlite" // side-effect: registers "sqlite" driver
)

const (
	DBType = "sqlite"
	// DefaultPlaceholderPrefix 0: anonymous `?`
	DefaultPlaceholderPrefix = 0
)

const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

func dialect(conf *sqldb.Conf) stdsql.Dialect {
	return stdsql.Dialect{
		DBType:            DBType,
		DriverName:        "sqlite",
		PlaceholderPrefix: DefaultPlaceholderPrefix,
		BuildDSN:          BuildDSN,
		// every connection to :memory: is a separate database
		SingleConn: conf.Path == "" && conf.DSN == "",
	}
}

func Register() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return New(conf), nil
	})
}

func New(conf *sqldb.Conf) *stdsql.Client {
	return stdsql.NewClient(conf, dialect(conf))
}

// NewInMemory returns an initialized client on a private in-memory database.
func NewInMemory() (*stdsql.Client, error) {
	c := New(&sqldb.Conf{Type: DBType})
	if err := c.Init(); err != nil {
		return nil, err
	}
	return c, nil
}

// BuildDSN points at conf.Path, or an in-memory database when Path is empty.
func BuildDSN(conf *sqldb.Conf) (string, error) {
	if conf.Path == "" {
		return ":memory:?" + pragmas, nil
	}
	return "file:" + conf.Path + "?" + pragmas, nil
}
