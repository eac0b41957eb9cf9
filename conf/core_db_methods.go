package conf

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/zeptools/gw-litesql/db/sqldb"
)

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func (c *Core) SQLDBClient(name string) (sqldb.Client, error) {
	client, ok := c.BackendSQLDBClients[name]
	if !ok {
		return nil, fmt.Errorf("sql database %q not prepared. available: %v", name, sortedKeys(c.BackendSQLDBClients))
	}
	return client, nil
}

// Session returns a Session on the pool of the named database.
func (c *Core) Session(name string) (*sqldb.Session, error) {
	client, err := c.SQLDBClient(name)
	if err != nil {
		return nil, err
	}
	return sqldb.NewSession(client), nil
}

func (c *Core) WithTx(ctx context.Context, name string, fn func(s *sqldb.Session) error) error {
	client, err := c.SQLDBClient(name)
	if err != nil {
		return err
	}
	return sqldb.WithTx(ctx, client, fn)
}

// SQL returns the stored statement `key` for the named database, in the `:name` form Session methods take.
func (c *Core) SQL(name string, key string) (string, error) {
	client, err := c.SQLDBClient(name)
	if err != nil {
		return "", err
	}
	dbType := client.GetConf().Type
	store, ok := c.StmtStores[dbType]
	if !ok {
		return "", fmt.Errorf("no statement store for %s", dbType)
	}
	parsed, ok := store.Get(key)
	if !ok {
		return "", fmt.Errorf("statement %q not found for %s", key, dbType)
	}
	return parsed.Source(), nil
}
