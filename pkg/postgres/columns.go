package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

// TokensColumn stores slot tokens as a JSONB array of their storage strings
type TokensColumn []slots.Token

// Value implements driver.Valuer for INSERT/UPDATE.
func (c TokensColumn) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(slots.EncodeAll(c))
}

// Scan implements sql.Scanner for SELECT. Seed entries are skipped.
func (c *TokensColumn) Scan(value any) error {
	raw, err := jsonBytes(value)
	if err != nil || raw == nil {
		*c = nil
		return err
	}

	var stored []string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("failed to decode tokens column: %w", err)
	}
	tokens, err := slots.DecodeAll(stored)
	if err != nil {
		return err
	}
	*c = tokens
	return nil
}

// UUIDsColumn stores a list of ids as a JSONB array
type UUIDsColumn []uuid.UUID

// Value implements driver.Valuer for INSERT/UPDATE.
func (c UUIDsColumn) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]uuid.UUID(c))
}

// Scan implements sql.Scanner for SELECT.
func (c *UUIDsColumn) Scan(value any) error {
	raw, err := jsonBytes(value)
	if err != nil || raw == nil {
		*c = nil
		return err
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("failed to decode id column: %w", err)
	}
	*c = ids
	return nil
}

func jsonBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("not a []byte: %T", value)
	}
}
