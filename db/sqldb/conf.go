package sqldb

import (
	"errors"
	"os"
	"time"
)

// DatabaseHostEnv overrides the default host when Conf.Host is empty.
const DatabaseHostEnv = "DATABASE_HOST"

type Conf struct {
	// mysql, pgsql, postgres, sqlite, ...
	Type string `json:"type" yaml:"type"`
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
	User string `json:"user" yaml:"user"`
	PW   string `json:"pw" yaml:"pw"`
	// Encrypted PW. See DecryptPW
	PWEnc string `json:"pw_enc" yaml:"pw_enc"`
	DB    string `json:"db" yaml:"db"`
	// Connection Timezone
	TZ string `json:"tz" yaml:"tz"`
	// To Overwrite Default DSN
	DSN string `json:"dsn" yaml:"dsn"`
	SSL bool   `json:"ssl" yaml:"ssl"`
	// sqlite database file. empty = in-memory
	Path string `json:"path" yaml:"path"`

	// Pool
	ConnectTimeoutMS int64 `json:"connect_timeout_ms" yaml:"connect_timeout_ms"`
	IdleTimeoutMS    int64 `json:"idle_timeout_ms" yaml:"idle_timeout_ms"`
	KeepAliveMS      int64 `json:"keepalive_ms" yaml:"keepalive_ms"`
	MaxLifetimeMS    int64 `json:"max_lifetime_ms" yaml:"max_lifetime_ms"`
	MinIdle          int   `json:"min_idle" yaml:"min_idle"`
	MaxPoolSize      int   `json:"max_pool_size" yaml:"max_pool_size"`
}

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultIdleTimeout    = 2 * time.Minute
	DefaultKeepAlive      = 3 * time.Minute
	DefaultMaxLifetime    = 5 * time.Minute
	DefaultMinIdle        = 1
	DefaultMaxPoolSize    = 5
)

var DefaultPortForDBType = map[string]int{
	"pgsql":    5432,
	"postgres": 5432,
	"mysql":    3306,
}

// IsEmbedded reports whether the database runs in-process and needs no network settings.
func (c *Conf) IsEmbedded() bool {
	return c.Type == "sqlite"
}

// ApplyDefaults fills zero-valued settings.
func (c *Conf) ApplyDefaults() {
	if !c.IsEmbedded() {
		if c.Host == "" {
			c.Host = os.Getenv(DatabaseHostEnv)
		}
		if c.Host == "" {
			c.Host = "127.0.0.1"
		}
		if c.Port == 0 {
			c.Port = DefaultPortForDBType[c.Type]
		}
	}
	if c.TZ == "" {
		c.TZ = "UTC"
	}
	if c.ConnectTimeoutMS == 0 {
		c.ConnectTimeoutMS = DefaultConnectTimeout.Milliseconds()
	}
	if c.IdleTimeoutMS == 0 {
		c.IdleTimeoutMS = DefaultIdleTimeout.Milliseconds()
	}
	if c.KeepAliveMS == 0 {
		c.KeepAliveMS = DefaultKeepAlive.Milliseconds()
	}
	if c.MaxLifetimeMS == 0 {
		c.MaxLifetimeMS = DefaultMaxLifetime.Milliseconds()
	}
	if c.MinIdle == 0 {
		c.MinIdle = DefaultMinIdle
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = DefaultMaxPoolSize
	}
}

// Validate checks the settings a client needs before opening connections.
func (c *Conf) Validate() error {
	if err := CheckNotBlank(c.Type, "type"); err != nil {
		return err
	}
	if c.IsEmbedded() || c.DSN != "" {
		return nil
	}
	var errs []error
	for _, f := range []struct{ value, name string }{
		{c.Host, "host"},
		{c.User, "user"},
		{c.DB, "db"},
	} {
		if err := CheckNotBlank(f.value, f.name); err != nil {
			errs = append(errs, err)
		}
	}
	if c.MinIdle > c.MaxPoolSize && c.MaxPoolSize > 0 {
		errs = append(errs, errors.New("min_idle must not exceed max_pool_size"))
	}
	return errors.Join(errs...)
}

// Decrypter is satisfied by sec.XChaCha20Poly1305Cipher.
type Decrypter interface {
	DecodeDecrypt(encoded string) ([]byte, error)
}

// DecryptPW replaces PW with the decrypted PWEnc, if set.
func (c *Conf) DecryptPW(d Decrypter) error {
	if c.PWEnc == "" {
		return nil
	}
	pw, err := d.DecodeDecrypt(c.PWEnc)
	if err != nil {
		return err
	}
	c.PW = string(pw)
	return nil
}

func (c *Conf) ConnectTimeout() time.Duration { return time.Duration(c.ConnectTimeoutMS) * time.Millisecond }
func (c *Conf) IdleTimeout() time.Duration    { return time.Duration(c.IdleTimeoutMS) * time.Millisecond }
func (c *Conf) KeepAlive() time.Duration      { return time.Duration(c.KeepAliveMS) * time.Millisecond }
func (c *Conf) MaxLifetime() time.Duration    { return time.Duration(c.MaxLifetimeMS) * time.Millisecond }
