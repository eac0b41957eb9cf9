package health

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeptools/gw-litesql/db/kvdb"
)

// Publisher stores the latest Response of each monitor in a KV database.
type Publisher struct {
	KV        kvdb.Client
	KeyPrefix string
	// TTL lets stale results expire when the runner stops. zero = keep
	TTL time.Duration
}

func (p *Publisher) key(name string) string {
	return p.KeyPrefix + name
}

func (p *Publisher) Publish(ctx context.Context, res Response) error {
	data, err := msgpack.Marshal(&res)
	if err != nil {
		return fmt.Errorf("failed to encode health response: %w", err)
	}
	return p.KV.Set(ctx, p.key(res.Name), data, p.TTL)
}

// Latest returns the last published Response for name.
func (p *Publisher) Latest(ctx context.Context, name string) (Response, bool, error) {
	var res Response
	val, found, err := p.KV.Get(ctx, p.key(name))
	if err != nil || !found {
		return res, false, err
	}
	if err = msgpack.Unmarshal([]byte(val), &res); err != nil {
		return res, false, fmt.Errorf("failed to decode health response %s: %w", name, err)
	}
	return res, true, nil
}

// Clear removes the published responses of names.
func (p *Publisher) Clear(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = p.key(n)
	}
	_, err := p.KV.Delete(ctx, keys...)
	return err
}
