package nullable

import (
	"github.com/google/uuid"
)

// UUID in `nullable` package
// implements: sql.Scanner, driver.Valuer and json (un)marshaling by embedding uuid.NullUUID
type UUID struct {
	uuid.NullUUID
}

func UUIDOf(id uuid.UUID) UUID {
	return UUID{uuid.NullUUID{UUID: id, Valid: true}}
}

func (n UUID) ForceValue() uuid.UUID {
	if !n.Valid {
		return uuid.Nil
	}
	return n.UUID
}

func (n UUID) IsNil() bool {
	return !n.Valid
}
