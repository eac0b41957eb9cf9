package nullable

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zeptools/gw-litesql/db/sqldb"
)

// Instant is a nullable sqldb.Instant read from a zone-naive timestamp column.
// The column's wall clock is taken as UTC, whatever location the driver attached.
type Instant struct {
	Instant sqldb.Instant
	Valid   bool
}

func InstantOf(t time.Time) Instant {
	return Instant{Instant: sqldb.InstantOf(t), Valid: true}
}

// wall clock layouts drivers use for zone-naive timestamps sent as text
var naiveLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (n *Instant) Scan(src any) error {
	*n = Instant{}
	var wall time.Time
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		wall = v
	case string:
		t, err := parseNaive(v)
		if err != nil {
			return err
		}
		wall = t
	case []byte:
		t, err := parseNaive(string(v))
		if err != nil {
			return err
		}
		wall = t
	default:
		return fmt.Errorf("nullable.Instant: cannot scan %T", src)
	}
	n.Instant = sqldb.InstantOf(sqldb.LocalDateTimeOf(wall).In(time.UTC))
	n.Valid = true
	return nil
}

func parseNaive(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// an explicit offset is ignored, only the wall clock counts
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("nullable.Instant: cannot parse %q", s)
}

// Value sends the UTC wall clock, the same way the binder sends sqldb.Instant.
func (n Instant) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Instant.LocalDateTime().Value()
}

func (n Instant) MarshalJSON() ([]byte, error) {
	return marshal(n.Valid, n.Instant.UTC().Format(time.RFC3339Nano))
}

func (n *Instant) UnmarshalJSON(data []byte) error {
	*n = Instant{}
	if isNull(data) {
		return nil
	}
	var str string // to string, then, to time.Time
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return err
	}
	*n = InstantOf(t)
	return nil
}

func (n Instant) ForceValue() time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return n.Instant.Time
}

func (n Instant) IsNil() bool {
	return !n.Valid
}
