package pgsql

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/zeptools/gw-litesql/db/sqldb"
)

const (
	DBType                   = "pgsql"
	DefaultPlaceholderPrefix = '$'
)

type Client struct {
	*Handle // [Embedded] for Promoted Methods
	Conf    *sqldb.Conf
	Pool    *pgxpool.Pool
	dsn     string
}

// Ensure pgsql.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

// Register makes the pgsql type available to sqldb.New.
func Register() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

func (c *Client) Init() error {
	c.Conf.ApplyDefaults()
	if err := c.Conf.Validate(); err != nil {
		return fmt.Errorf("invalid pgsql conf: %w", err)
	}
	c.dsn = BuildDSN(c.Conf)
	ctx, cancel := context.WithTimeout(context.Background(), c.Conf.ConnectTimeout())
	defer cancel()
	// Open
	err := c.Open(ctx)
	if err != nil {
		return err
	}
	// Ping
	if err = c.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	log.Info("[pgsql] client initialized")
	return nil
}

// BuildDSN returns conf.DSN, or a pgx key/value DSN built from the other fields.
// NOTE: PostgreSQL natively allows multiple statements in a single query string.
func BuildDSN(conf *sqldb.Conf) string {
	if conf.DSN != "" {
		return conf.DSN
	}
	sslMode := "disable"
	if conf.SSL {
		sslMode = "require"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		conf.Host,
		conf.Port,
		quoteValue(conf.User),
		quoteValue(conf.PW),
		quoteValue(conf.DB),
		sslMode,
	)
	if conf.TZ != "" {
		dsn += " timezone=" + quoteValue(conf.TZ)
	}
	return dsn
}

// quoteValue quotes a key/value DSN value when it is empty or has spaces or quotes.
func quoteValue(v string) string {
	if v != "" && !containsAny(v, ` '\`) {
		return v
	}
	out := []byte{'\''}
	for i := 0; i < len(v); i++ {
		if v[i] == '\'' || v[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, v[i])
	}
	return string(append(out, '\''))
}

func containsAny(s, chars string) bool {
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(chars); j++ {
			if s[i] == chars[j] {
				return true
			}
		}
	}
	return false
}

// PoolConfig builds the pgxpool settings from conf.
func PoolConfig(conf *sqldb.Conf) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(BuildDSN(conf))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	if conf.MaxPoolSize > 0 {
		config.MaxConns = int32(conf.MaxPoolSize)
	}
	if conf.MinIdle > 0 {
		config.MinConns = int32(min(conf.MinIdle, int(config.MaxConns)))
	}
	if d := conf.MaxLifetime(); d > 0 {
		config.MaxConnLifetime = d
	}
	if d := conf.IdleTimeout(); d > 0 {
		config.MaxConnIdleTime = d
	}
	if d := conf.KeepAlive(); d > 0 {
		config.HealthCheckPeriod = d
	}
	if d := conf.ConnectTimeout(); d > 0 {
		config.ConnConfig.ConnectTimeout = d
	}
	return config, nil
}

func (c *Client) GetHandle() sqldb.Handle {
	return c.Handle
}

func (c *Client) GetConf() *sqldb.Conf {
	return c.Conf
}

func (c *Client) GetDSN() string {
	return c.dsn
}

func (c *Client) PlaceholderPrefix() byte {
	return DefaultPlaceholderPrefix
}

func (c *Client) Open(ctx context.Context) error {
	config, err := PoolConfig(c.Conf)
	if err != nil {
		return err
	}
	c.Pool, err = pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to connect pgx Pool: %w", err)
	}
	c.Handle = newPoolHandle(c.Pool)
	log.Debugf("[pgsql] pool opened on %s (max %d conns)",
		net.JoinHostPort(config.ConnConfig.Host, strconv.Itoa(int(config.ConnConfig.Port))), config.MaxConns)
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.Pool == nil {
		return fmt.Errorf("pgsql client not initialized")
	}
	return c.Pool.Ping(ctx)
}

func (c *Client) Close() error {
	if c.Pool == nil {
		return nil
	}
	log.Info("[pgsql] closing client")
	c.Pool.Close()
	log.Info("[pgsql] client closed")
	return nil
}

func (c *Client) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	if c.Pool == nil {
		return nil, fmt.Errorf("pgsql client not initialized")
	}
	tx, err := c.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction failed: %w", err)
	}
	return newTx(tx), nil
}
