package redis

import (
	"context"
	"errors"
	"time"

	lowimpl "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/zeptools/gw-litesql/db/kvdb"
)

const DBType = "redis"

type Client struct {
	Conf *kvdb.Conf

	// implementation details, not exported
	internal lowimpl.UniversalClient
}

// Ensure redis.Client implements kvdb.Client interface
var _ kvdb.Client = (*Client)(nil)

// FromClient wraps an existing go-redis client, e.g. one pointing at a test server.
func FromClient(conf *kvdb.Conf, rc lowimpl.UniversalClient) *Client {
	return &Client{Conf: conf, internal: rc}
}

func (c *Client) Init() error {
	c.internal = lowimpl.NewClient(&lowimpl.Options{
		Addr:     c.Conf.Addr(),
		Password: c.Conf.PW,
		DB:       c.Conf.DB,
	})
	log.Infof("[redis] client initialized for %s", c.Conf.Addr())
	return nil
}

func (c *Client) Close() error {
	if c.internal == nil {
		return nil
	}
	return c.internal.Close()
}

func (c *Client) GetHandle() any { // use with runtime type assertion
	return c.internal
}

func (c *Client) GetConf() *kvdb.Conf {
	return c.Conf
}

func (c *Client) Ping(ctx context.Context) error {
	if c.internal == nil {
		return kvdb.ErrNotInitialized
	}
	return c.internal.Ping(ctx).Err()
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	if c.internal == nil {
		return "", false, kvdb.ErrNotInitialized
	}
	val, err := c.internal.Get(ctx, key).Result()
	if errors.Is(err, lowimpl.Nil) {
		return "", false, nil // redis.Nil -> ok: false, err: nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if c.internal == nil {
		return kvdb.ErrNotInitialized
	}
	return c.internal.Set(ctx, key, value, expiration).Err()
}

func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if c.internal == nil {
		return 0, kvdb.ErrNotInitialized
	}
	return c.internal.Del(ctx, keys...).Result()
}
