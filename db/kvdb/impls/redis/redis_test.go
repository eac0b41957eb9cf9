package redis

import (
	"context"
	"testing"
	"time"

	lowimpl "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeptools/gw-litesql/db/kvdb"
)

func TestNotInitialized(t *testing.T) {
	c := &Client{Conf: &kvdb.Conf{Type: DBType}}
	ctx := context.Background()

	assert.ErrorIs(t, c.Ping(ctx), kvdb.ErrNotInitialized)
	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, kvdb.ErrNotInitialized)
	assert.ErrorIs(t, c.Set(ctx, "k", "v", 0), kvdb.ErrNotInitialized)
	_, err = c.Delete(ctx, "k")
	assert.ErrorIs(t, err, kvdb.ErrNotInitialized)
	assert.NoError(t, c.Close())
}

func TestInitUsesConfAddr(t *testing.T) {
	c := &Client{Conf: &kvdb.Conf{Type: DBType, Port: 6390, DB: 2}}
	require.NoError(t, c.Init())
	defer c.Close()

	rc, ok := c.GetHandle().(*lowimpl.Client)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:6390", rc.Options().Addr)
	assert.Equal(t, 2, rc.Options().DB)
}

func TestUnreachable(t *testing.T) {
	rc := lowimpl.NewClient(&lowimpl.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	c := FromClient(&kvdb.Conf{Type: DBType}, rc)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, c.Ping(ctx))
	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
}
