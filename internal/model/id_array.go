package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// IDArray stores a set of record IDs in a single Postgres integer[]
// column. Mapping to a native array keeps the overlap operator (&&)
// available for tenant-set scoping queries.
type IDArray []uint

// GormDataType tells the migrator which column type to create
func (IDArray) GormDataType() string {
	return "integer[]"
}

// Value serializes the set into Postgres array literal form
func (a IDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, len(a))
	for i, id := range a {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Scan parses a Postgres array literal back into the set
func (a *IDArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported type %T for IDArray", value)
	}

	raw = strings.Trim(raw, "{}")
	if raw == "" {
		*a = IDArray{}
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make(IDArray, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid ID %q in array: %w", p, err)
		}
		out = append(out, uint(id))
	}
	*a = out
	return nil
}

// Contains reports whether the set holds the given ID
func (a IDArray) Contains(id uint) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// effectiveTenants resolves the dual tenant columns carried by every
// shared record: the set column wins when populated, otherwise the
// legacy scalar stands alone.
func effectiveTenants(scalar uint, set IDArray) []uint {
	if len(set) > 0 {
		return []uint(set)
	}
	if scalar == 0 {
		return nil
	}
	return []uint{scalar}
}
