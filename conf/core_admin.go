package conf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zeptools/gw-litesql/health"
	"github.com/zeptools/gw-litesql/uds"
)

// PrepareAdminSocket adds a unix socket service answering database admin commands.
// Prerequisite: PrepareSQLDatabases
func (c *Core) PrepareAdminSocket(sockPath string) *uds.Service {
	s := uds.NewService(c.RootCtx, sockPath, c.adminCommands())
	c.AddService(s)
	return s
}

func (c *Core) adminCommands() map[string]uds.CmdHnd {
	return map[string]uds.CmdHnd{
		"dbs": {
			Desc: "list prepared sql databases",
			Fn: func(_ context.Context, _ []string, w io.Writer) error {
				for _, name := range sortedKeys(c.BackendSQLDBClients) {
					if _, err := fmt.Fprintf(w, "%s %s\n", name, c.BackendSQLDBClients[name].GetConf().Type); err != nil {
						return err
					}
				}
				return nil
			},
		},
		"health": {
			Desc: "check every sql database now",
			Fn: func(ctx context.Context, _ []string, w io.Writer) error {
				monitors := make([]*health.Monitor, 0, len(c.BackendSQLDBClients))
				for _, name := range sortedKeys(c.BackendSQLDBClients) {
					monitors = append(monitors, &health.Monitor{Name: name, Handle: c.BackendSQLDBClients[name]})
				}
				for _, res := range health.CheckAll(ctx, monitors...) {
					status := "healthy"
					if !res.Healthy {
						status = "unhealthy: " + res.Message
					}
					if _, err := fmt.Fprintf(w, "%s %s\n", res.Name, status); err != nil {
						return err
					}
				}
				return nil
			},
		},
		"stmts": {
			Desc:  "list stored statements for a database",
			Usage: "<db>",
			Fn: func(_ context.Context, args []string, w io.Writer) error {
				if len(args) != 1 {
					return errors.New("usage: stmts <db>")
				}
				client, err := c.SQLDBClient(args[0])
				if err != nil {
					return err
				}
				store, ok := c.StmtStores[client.GetConf().Type]
				if !ok {
					return fmt.Errorf("no statement store for %s", client.GetConf().Type)
				}
				_, err = fmt.Fprintln(w, strings.Join(store.Keys(), "\n"))
				return err
			},
		},
	}
}
