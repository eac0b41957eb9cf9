package mysql

import (
	"fmt"
	"net"
	"strconv"
	"time"

	lowimpl "github.com/go-sql-driver/mysql"
	"github.com/zeptools/gw-litesql/db/sqldb"
	"github.com/zeptools/gw-litesql/db/sqldb/impls/stdsql"
)

const (
	DBType                   = "mysql"
	DefaultPlaceholderPrefix = '?'
)

var Dialect = stdsql.Dialect{
	DBType:            DBType,
	DriverName:        "mysql",
	PlaceholderPrefix: DefaultPlaceholderPrefix,
	BuildDSN:          BuildDSN,
	LastInsertIDFirst: true,
}

// Register makes the mysql type available to sqldb.New.
func Register() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return New(conf), nil
	})
}

func New(conf *sqldb.Conf) *stdsql.Client {
	return stdsql.NewClient(conf, Dialect)
}

// BuildDSN formats conf as a go-sql-driver DSN.
// Double quotes delimit identifiers (ANSI_QUOTES), as in the other dialects.
func BuildDSN(conf *sqldb.Conf) (string, error) {
	cfg := lowimpl.NewConfig()
	cfg.User = conf.User
	cfg.Passwd = conf.PW
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port))
	cfg.DBName = conf.DB
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.Timeout = conf.ConnectTimeout()
	if conf.TZ != "" {
		loc, err := time.LoadLocation(conf.TZ)
		if err != nil {
			return "", fmt.Errorf("invalid tz %q: %w", conf.TZ, err)
		}
		cfg.Loc = loc
	}
	if conf.SSL {
		cfg.TLSConfig = "true"
	}
	cfg.Params = map[string]string{"sql_mode": "ANSI_QUOTES"}
	return cfg.FormatDSN(), nil
}
