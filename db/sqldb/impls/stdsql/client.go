package stdsql

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zeptools/gw-litesql/db/sqldb"
)

// Dialect describes how a database/sql driver is opened for a database type.
type Dialect struct {
	DBType            string
	DriverName        string
	PlaceholderPrefix byte
	ReturningID       bool
	BuildDSN          func(conf *sqldb.Conf) (string, error)
	// SingleConn restricts the pool to one connection, e.g. for in-memory databases.
	SingleConn bool
	// LastInsertIDFirst: LastInsertId of a multi-row INSERT is the first row's key (mysql).
	LastInsertIDFirst bool
}

func (d Dialect) handle(c conn) *Handle {
	h := NewHandle(c, d.ReturningID)
	h.LastInsertIDFirst = d.LastInsertIDFirst
	return h
}

// Client is a sqldb.Client over database/sql, shared by the mysql, pq and sqlite impls.
type Client struct {
	*Handle // [Embedded] for Promoted Methods

	Conf    *sqldb.Conf
	Dialect Dialect

	// db fields are implementation details, not exported
	db  *sql.DB
	dsn string
}

// Ensure stdsql.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

func NewClient(conf *sqldb.Conf, dialect Dialect) *Client {
	return &Client{Conf: conf, Dialect: dialect}
}

// FromDB wraps an already opened *sql.DB, e.g. one created by sqlmock.
func FromDB(db *sql.DB, conf *sqldb.Conf, dialect Dialect) *Client {
	return &Client{
		Handle:  dialect.handle(db),
		Conf:    conf,
		Dialect: dialect,
		db:      db,
	}
}

func (c *Client) Init() error {
	c.Conf.ApplyDefaults()
	if err := c.Conf.Validate(); err != nil {
		return fmt.Errorf("invalid %s conf: %w", c.Dialect.DBType, err)
	}
	if c.Conf.DSN != "" {
		c.dsn = c.Conf.DSN
	} else {
		dsn, err := c.Dialect.BuildDSN(c.Conf)
		if err != nil {
			return err
		}
		c.dsn = dsn
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Conf.ConnectTimeout())
	defer cancel()
	if err := c.Open(ctx); err != nil {
		return err
	}
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", c.Dialect.DBType, err)
	}
	log.Infof("[%s] client initialized", c.Dialect.DBType)
	return nil
}

func (c *Client) Open(_ context.Context) error {
	db, err := sql.Open(c.Dialect.DriverName, c.dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.Dialect.DBType, err)
	}
	if c.Dialect.SingleConn {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(c.Conf.MaxPoolSize)
		db.SetMaxIdleConns(c.Conf.MaxPoolSize)
		db.SetConnMaxLifetime(c.Conf.MaxLifetime())
		db.SetConnMaxIdleTime(c.Conf.IdleTimeout())
	}
	c.db = db
	c.Handle = c.Dialect.handle(db)
	return nil
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	log.Infof("[%s] closing client", c.Dialect.DBType)
	if err := c.db.Close(); err != nil {
		return err
	}
	log.Infof("[%s] client closed", c.Dialect.DBType)
	return nil
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

// DB exposes the underlying pool.
func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) PlaceholderPrefix() byte {
	return c.Dialect.PlaceholderPrefix
}

func (c *Client) Ping(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("%s client not initialized", c.Dialect.DBType)
	}
	return c.db.PingContext(ctx)
}

func (c *Client) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	if c.db == nil {
		return nil, fmt.Errorf("%s client not initialized", c.Dialect.DBType)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{Handle: c.Dialect.handle(tx), tx: tx}, nil
}
