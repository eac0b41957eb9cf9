package mysql

import (
	"testing"
	_ "time/tzdata"

	lowimpl "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeptools/gw-litesql/db/sqldb"
)

func TestBuildDSN(t *testing.T) {
	conf := &sqldb.Conf{Type: DBType, Host: "db", Port: 3306, User: "app", PW: "p@ss", DB: "main", TZ: "Asia/Seoul", SSL: true}
	conf.ApplyDefaults()

	dsn, err := BuildDSN(conf)
	require.NoError(t, err)
	cfg, err := lowimpl.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "p@ss", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "main", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "Asia/Seoul", cfg.Loc.String())
	assert.Equal(t, "true", cfg.TLSConfig)
	assert.Equal(t, sqldb.DefaultConnectTimeout, cfg.Timeout)
	assert.Equal(t, "ANSI_QUOTES", cfg.Params["sql_mode"])
}

func TestBuildDSNBadTZ(t *testing.T) {
	_, err := BuildDSN(&sqldb.Conf{Host: "db", Port: 3306, TZ: "Mars/Olympus"})
	assert.Error(t, err)
}
