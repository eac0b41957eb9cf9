package conf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonbodner/multierr"
	log "github.com/sirupsen/logrus"
	"github.com/zeptools/gw-litesql/db"
	"github.com/zeptools/gw-litesql/db/kvdb"
	"github.com/zeptools/gw-litesql/db/kvdb/impls/redis"
	"github.com/zeptools/gw-litesql/db/sqldb"
	"github.com/zeptools/gw-litesql/db/sqldb/impls/mysql"
	"github.com/zeptools/gw-litesql/db/sqldb/impls/pgsql"
	"github.com/zeptools/gw-litesql/db/sqldb/impls/pq"
	"github.com/zeptools/gw-litesql/db/sqldb/impls/sqlite"
	"github.com/zeptools/gw-litesql/health"
	"github.com/zeptools/gw-litesql/sec"
	"github.com/zeptools/gw-litesql/svc"
)

// Core - common config and the database resources built from it
type Core struct {
	AppName             string                      `json:"app_name" yaml:"app_name"`
	LogLevel            string                      `json:"log_level" yaml:"log_level"` // logrus level name. default info
	Health              HealthConf                  `json:"health" yaml:"health"`       // PrepareHealthRunner
	AppRoot             string                      `json:"-" yaml:"-"`                 // Filled from compiled paths
	RootCtx             context.Context             `json:"-" yaml:"-"`                 // Global Context with RootCancel
	RootCancel          context.CancelFunc          `json:"-" yaml:"-"`                 // CancelFunc for RootCtx
	KVDBConf            kvdb.Conf                   `json:"-" yaml:"-"`                 // loadKVDBConf
	BackendKVDBClient   kvdb.Client                 `json:"-" yaml:"-"`                 // prepareKVDBClient
	SQLDBConfs          map[string]*sqldb.Conf      `json:"-" yaml:"-"`                 // loadSQLDBConfs
	BackendSQLDBClients map[string]sqldb.Client     `json:"-" yaml:"-"`                 // prepareSQLDBClients
	StmtStores          map[string]*sqldb.StmtStore `json:"-" yaml:"-"`                 // per db type. loadStmtStores
	HealthRunner        *health.Runner              `json:"-" yaml:"-"`                 // PrepareHealthRunner

	services []svc.Service // Services to Manage
	done     chan error
}

type HealthConf struct {
	IntervalMS int64  `json:"interval_ms" yaml:"interval_ms"`
	KeyPrefix  string `json:"key_prefix" yaml:"key_prefix"`
	TTLMS      int64  `json:"ttl_ms" yaml:"ttl_ms"`
}

const DefaultHealthInterval = 30 * time.Second

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json (or .yaml) file
// 3. Start ShutdownSignalListener
func (c *Core) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	if err := loadConfFile(c.configDir(), ".core", c); err != nil {
		return err
	}
	if c.LogLevel != "" {
		level, err := log.ParseLevel(c.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
	}
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.startShutdownSignalListener()
	return nil
}

func (c *Core) AddService(s svc.Service) {
	log.Infof("adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Infof("total services: %d", len(c.services))
}

func (c *Core) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s)
	}
	return nil
}

func (c *Core) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Infof("got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
		log.Info("[CORE] shutdown signal listener started")
	})
}

func (c *Core) PrepareKVDatabase() error {
	// Load KV Database Config File
	err := c.loadKVDBConf()
	if err != nil {
		return err
	}
	if err = c.prepareKVDBClient(); err != nil {
		return err
	}
	return nil
}

func (c *Core) loadKVDBConf() error {
	return loadConfFile(c.configDir(), ".kv-databases", &c.KVDBConf)
}

func (c *Core) prepareKVDBClient() error {
	if err := c.KVDBConf.Validate(); err != nil {
		return err
	}
	switch c.KVDBConf.Type {
	case redis.DBType:
		c.BackendKVDBClient = &redis.Client{Conf: &c.KVDBConf}
		if err := c.BackendKVDBClient.Init(); err != nil {
			return err
		}
	// case "memcached"
	default:
		return errors.New("unsupported key-value database type")
	}
	return nil
}

// loadSQLDBConfs reads name -> sqldb.Conf and decrypts `pw_enc` entries
func (c *Core) loadSQLDBConfs() error {
	c.SQLDBConfs = make(map[string]*sqldb.Conf)
	if err := loadConfFile(c.configDir(), ".sql-databases", &c.SQLDBConfs); err != nil {
		return err
	}
	var cipher *sec.XChaCha20Poly1305Cipher
	var errs error
	for name, dbConf := range c.SQLDBConfs {
		if dbConf.PWEnc == "" {
			continue
		}
		if cipher == nil {
			var err error
			if cipher, err = sec.CipherFromEnv(sec.ConfKeyEnv); err != nil {
				return fmt.Errorf("%q has pw_enc: %w", name, err)
			}
		}
		if err := dbConf.DecryptPW(cipher); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to decrypt pw of %q: %w", name, err))
		}
	}
	return errs
}

// RegisterImpls makes every bundled sqldb implementation available to sqldb.New
func RegisterImpls() {
	pgsql.Register()
	mysql.Register()
	pq.Register()
	sqlite.Register()
}

// prepareSQLDBClients - Build & Init SQL DB Clients
// Use after loadSQLDBConfs
func (c *Core) prepareSQLDBClients() error {
	c.BackendSQLDBClients = make(map[string]sqldb.Client)
	RegisterImpls()
	for dbName, sqlDBConf := range c.SQLDBConfs {
		dbClient, err := sqldb.New(sqlDBConf)
		if err != nil {
			return err
		}
		if err = dbClient.Init(); err != nil {
			return fmt.Errorf("%q: %w", dbName, err)
		}
		c.BackendSQLDBClients[dbName] = dbClient
	}
	return nil
}

// loadStmtStores loads one statement store per db type in use
func (c *Core) loadStmtStores() error {
	c.StmtStores = make(map[string]*sqldb.StmtStore)
	var errs error
	for _, client := range c.BackendSQLDBClients {
		dbType := client.GetConf().Type
		if _, ok := c.StmtStores[dbType]; ok {
			continue
		}
		store := sqldb.NewStmtStore(dbType, client.PlaceholderPrefix())
		if err := store.Load(); err != nil {
			errs = multierr.Append(errs, err)
		}
		c.StmtStores[dbType] = store
	}
	return errs
}

// PrepareSQLDatabases for SQL DB Clients & Statement Stores
// ensureImports runs before the stores load, so packages registering statement groups are initialized
func (c *Core) PrepareSQLDatabases(ensureImports func()) error {
	// Load SQL Databases Config File
	err := c.loadSQLDBConfs()
	if err != nil {
		return err
	}
	if len(c.SQLDBConfs) == 0 {
		return nil
	}
	if err = c.prepareSQLDBClients(); err != nil {
		return err
	}
	if ensureImports != nil {
		ensureImports()
	}
	return c.loadStmtStores()
}

// PrepareHealthRunner monitors every SQL client, publishing to the KV client if prepared
// Prerequisite: BackendSQLDBClients
func (c *Core) PrepareHealthRunner() error {
	if len(c.BackendSQLDBClients) == 0 {
		return errors.New("no sql database client to monitor")
	}
	interval := time.Duration(c.Health.IntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	monitors := make([]*health.Monitor, 0, len(c.BackendSQLDBClients))
	for _, name := range sortedKeys(c.BackendSQLDBClients) {
		monitors = append(monitors, &health.Monitor{Name: name, Handle: c.BackendSQLDBClients[name]})
	}
	c.HealthRunner = health.NewRunner(c.RootCtx, interval, monitors...)
	if c.BackendKVDBClient != nil {
		prefix := c.Health.KeyPrefix
		if prefix == "" {
			prefix = c.AppName + "_health:"
		}
		c.HealthRunner.Publisher = &health.Publisher{
			KV:        c.BackendKVDBClient,
			KeyPrefix: prefix,
			TTL:       time.Duration(c.Health.TTLMS) * time.Millisecond,
		}
	}
	c.AddService(c.HealthRunner)
	return nil
}

func (c *Core) ResourceCleanUp() {
	log.Info("App Resource Cleaning Up...")
	if c.BackendKVDBClient != nil {
		db.CloseClient("kvdb", c.BackendKVDBClient)
	}
	for name, sqlDBClient := range c.BackendSQLDBClients {
		db.CloseClient(fmt.Sprintf("[%s] %s", sqlDBClient.GetConf().Type, name), sqlDBClient)
	}
	log.Info("App Resource Cleanup Complete")
}
