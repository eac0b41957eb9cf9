package sqldb

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Instant is an absolute point on the time line with no zone attached.
// Bound parameters of this type are sent as the UTC wall clock (LocalDateTime).
type Instant struct {
	time.Time
}

func InstantOf(t time.Time) Instant { return Instant{Time: t} }

func Now() Instant { return Instant{Time: time.Now()} }

// LocalDateTime returns the UTC calendar and clock fields of the instant.
func (i Instant) LocalDateTime() LocalDateTime {
	return LocalDateTimeOf(i.Time.UTC())
}

// LocalDateTime is a zone-naive date-time.
type LocalDateTime struct {
	Year       int
	Month      time.Month
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// LocalDateTimeOf takes the wall clock fields of t in its own location.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return LocalDateTime{
		Year:       t.Year(),
		Month:      t.Month(),
		Day:        t.Day(),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
	}
}

// In interprets the wall clock in loc.
func (l LocalDateTime) In(loc *time.Location) time.Time {
	return time.Date(l.Year, l.Month, l.Day, l.Hour, l.Minute, l.Second, l.Nanosecond, loc)
}

// Value implements driver.Valuer. Drivers receive the wall clock in UTC,
// which they write unchanged to zone-naive timestamp columns.
func (l LocalDateTime) Value() (driver.Value, error) {
	return l.In(time.UTC), nil
}

func (l LocalDateTime) String() string {
	return l.In(time.UTC).Format("2006-01-02T15:04:05.999999999")
}

// OffsetDateTime returns t in a fixed zone with the same offset.
// The instant is unchanged, the zone name is dropped.
func OffsetDateTime(t time.Time) time.Time {
	_, offset := t.Zone()
	return t.In(time.FixedZone("", offset))
}

// Enum is implemented by enumerated values bound by their symbolic name.
type Enum interface {
	EnumName() string
}

// SQLType is a SQL type code used for type-hinted binding.
// Codes follow the JDBC java.sql.Types numbering.
type SQLType int

const (
	SQLTypeNull        SQLType = 0
	SQLTypeChar        SQLType = 1
	SQLTypeNumeric     SQLType = 2
	SQLTypeDecimal     SQLType = 3
	SQLTypeInteger     SQLType = 4
	SQLTypeSmallInt    SQLType = 5
	SQLTypeDouble      SQLType = 8
	SQLTypeVarchar     SQLType = 12
	SQLTypeBoolean     SQLType = 16
	SQLTypeDate        SQLType = 91
	SQLTypeTimestamp   SQLType = 93
	SQLTypeOther       SQLType = 1111
	SQLTypeTimestampTZ SQLType = 2014
	SQLTypeBigInt      SQLType = -5
	SQLTypeBinary      SQLType = -2
)

var sqlTypeNames = map[SQLType]string{
	SQLTypeNull:        "NULL",
	SQLTypeChar:        "CHAR",
	SQLTypeNumeric:     "NUMERIC",
	SQLTypeDecimal:     "DECIMAL",
	SQLTypeInteger:     "INTEGER",
	SQLTypeSmallInt:    "SMALLINT",
	SQLTypeDouble:      "DOUBLE",
	SQLTypeVarchar:     "VARCHAR",
	SQLTypeBoolean:     "BOOLEAN",
	SQLTypeDate:        "DATE",
	SQLTypeTimestamp:   "TIMESTAMP",
	SQLTypeOther:       "OTHER",
	SQLTypeTimestampTZ: "TIMESTAMP_WITH_TIMEZONE",
	SQLTypeBigInt:      "BIGINT",
	SQLTypeBinary:      "BINARY",
}

func (t SQLType) String() string {
	if name, ok := sqlTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SQLType(%d)", int(t))
}

// DBValue carries a value together with an explicit SQL type hint.
// Precision is the scale for NUMERIC and DECIMAL hints.
type DBValue struct {
	Value     any
	Type      SQLType
	Precision *int
}

func TypedValue(v any, t SQLType) DBValue {
	return DBValue{Value: v, Type: t}
}

func TypedValueWithPrecision(v any, t SQLType, precision int) DBValue {
	return DBValue{Value: v, Type: t, Precision: &precision}
}

// PostgresEnum binds e to a Postgres enum column.
// The server resolves the untyped literal against the column's enum type.
func PostgresEnum(e Enum) DBValue {
	return DBValue{Value: e, Type: SQLTypeOther}
}
