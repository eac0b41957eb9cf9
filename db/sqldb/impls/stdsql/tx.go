package stdsql

import (
	"context"
	"database/sql"

	"github.com/zeptools/gw-litesql/db/sqldb"
)

type Tx struct {
	*Handle // [Embedded] statements run on the transaction
	tx      *sql.Tx
}

// Ensure stdsql.Tx implements sqldb.Tx interface
var _ sqldb.Tx = (*Tx)(nil)

func (t *Tx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *Tx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}
