package pq

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	lowimpl "github.com/lib/pq"
	"github.com/zeptools/gw-litesql/db/sqldb"
	"github.com/zeptools/gw-litesql/db/sqldb/impls/stdsql"
)

// DBType is Postgres reached through database/sql and lib/pq.
// The pgsql impl covers the same servers through a pgx pool.
const (
	DBType                   = "postgres"
	DefaultPlaceholderPrefix = '$'
)

var Dialect = stdsql.Dialect{
	DBType:            DBType,
	DriverName:        "postgres",
	PlaceholderPrefix: DefaultPlaceholderPrefix,
	ReturningID:       true,
	BuildDSN:          BuildDSN,
}

func Register() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return New(conf), nil
	})
}

func New(conf *sqldb.Conf) *stdsql.Client {
	return stdsql.NewClient(conf, Dialect)
}

// BuildDSN formats conf as a lib/pq key/value connection string.
func BuildDSN(conf *sqldb.Conf) (string, error) {
	sslMode := "disable"
	if conf.SSL {
		sslMode = "require"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	if timeout := conf.ConnectTimeout(); timeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(max(1, int(timeout.Seconds()))))
	}
	if conf.TZ != "" {
		q.Set("timezone", conf.TZ)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.PW),
		Host:     net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port)),
		Path:     "/" + conf.DB,
		RawQuery: q.Encode(),
	}
	dsn, err := lowimpl.ParseURL(u.String())
	if err != nil {
		return "", fmt.Errorf("failed to build postgres dsn: %w", err)
	}
	return dsn, nil
}
