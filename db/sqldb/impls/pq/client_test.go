package pq

import (
	"testing"

	lowimpl "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeptools/gw-litesql/db/sqldb"
)

func TestBuildDSN(t *testing.T) {
	conf := &sqldb.Conf{Type: DBType, Host: "db", User: "app", PW: "it's secret", DB: "main"}
	conf.ApplyDefaults()

	dsn, err := BuildDSN(conf)
	require.NoError(t, err)
	_, err = lowimpl.NewConnector(dsn)
	require.NoError(t, err)
	for _, part := range []string{"host=", "db", "port=", "5432", "dbname=", "main", "sslmode=", "disable", "connect_timeout=", "timezone=", `it\'s secret`} {
		assert.Contains(t, dsn, part)
	}
}

func TestDialect(t *testing.T) {
	assert.True(t, Dialect.ReturningID)
	assert.Equal(t, byte('$'), Dialect.PlaceholderPrefix)
}
