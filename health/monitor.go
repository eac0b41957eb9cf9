// Package health checks database reachability and publishes the results.
package health

import (
	"cmp"
	"context"
	"errors"
	"time"

	"github.com/zeptools/gw-litesql/db/sqldb"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMonitorName = "db"
	DefaultCheckQuery  = "SELECT 1"
)

// Response is the outcome of one check. Message is empty when healthy.
type Response struct {
	Name      string    `json:"name" msgpack:"name"`
	Healthy   bool      `json:"healthy" msgpack:"healthy"`
	Message   string    `json:"message" msgpack:"message"`
	CheckedAt time.Time `json:"checked_at" msgpack:"checked_at"`
}

// Monitor runs Query against Handle. The database is healthy when the query yields a row.
type Monitor struct {
	Handle sqldb.Handle
	Name   string // DefaultMonitorName when empty
	Query  string // DefaultCheckQuery when empty
}

var errNoRow = errors.New("health query returned no rows")

func (m *Monitor) MonitorName() string {
	return cmp.Or(m.Name, DefaultMonitorName)
}

func (m *Monitor) Check(ctx context.Context) Response {
	res := Response{Name: m.MonitorName(), CheckedAt: time.Now()}
	var v any
	err := m.Handle.QueryRow(ctx, cmp.Or(m.Query, DefaultCheckQuery)).Scan(&v)
	if errors.Is(err, sqldb.ErrNoRows) {
		err = errNoRow
	}
	if err != nil {
		res.Message = err.Error()
		return res
	}
	res.Healthy = true
	return res
}

// CheckAll runs every monitor concurrently. Responses keep the monitors' order.
func CheckAll(ctx context.Context, monitors ...*Monitor) []Response {
	responses := make([]Response, len(monitors))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range monitors {
		g.Go(func() error {
			responses[i] = m.Check(gctx)
			return nil
		})
	}
	_ = g.Wait() // checks never fail the group
	return responses
}

// Healthy reports whether every response is healthy.
func Healthy(responses []Response) bool {
	for _, r := range responses {
		if !r.Healthy {
			return false
		}
	}
	return true
}
