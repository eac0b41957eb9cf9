package stdsql

import (
	"database/sql"

	"github.com/zeptools/gw-litesql/db/sqldb"
)

type Result struct {
	result       sql.Result
	lastInsertID int64 // from `RETURNING id`
	affected     int64
}

// Ensure stdsql.Result implements sqldb.Result interface
var _ sqldb.Result = (*Result)(nil)

func (r *Result) RowsAffected() (int64, error) {
	if r.result == nil {
		return r.affected, nil
	}
	return r.result.RowsAffected()
}

func (r *Result) LastInsertId() (int64, error) {
	if r.result == nil {
		return r.lastInsertID, nil
	}
	return r.result.LastInsertId()
}
