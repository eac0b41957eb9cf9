package kvdb

import (
	"context"
	"errors"
	"time"
)

// Client is the key-value store health results are published to.
type Client interface {
	Init() error
	Close() error
	GetHandle() any // generic handle
	GetConf() *Conf
	Ping(ctx context.Context) error

	// Set stores value under key. A zero expiration keeps the key forever.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error) // val, found, err
	Delete(ctx context.Context, keys ...string) (int64, error)
}

var ErrNotInitialized = errors.New("kvdb: client not initialized")
