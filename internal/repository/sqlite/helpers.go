package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"topodiagram/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// formatTime renders a timestamp the way it is stored
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a stored timestamp
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string.
// Nil values and empty maps are stored as NULL.
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Len() == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Row Conversion
// ============================================================================

// sessionRow mirrors a row of the sessions table
type sessionRow struct {
	ID           string
	Name         string
	Kind         string
	CustomerName string
	Address      sql.NullString
	Quantities   sql.NullString
	Positions    sql.NullString
	CreatedAt    string
	UpdatedAt    string
}

// sessionRowToDomain converts a database row to a domain session
func sessionRowToDomain(row sessionRow) (*domain.Session, error) {
	s := &domain.Session{
		ID:   row.ID,
		Name: row.Name,
		Config: domain.TopologyConfig{
			Kind:         domain.TopologyKind(row.Kind),
			CustomerName: row.CustomerName,
			Address:      nullToString(row.Address),
			Quantities:   make(map[string]int),
		},
	}

	if err := unmarshalJSONField(row.Quantities, &s.Config.Quantities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quantities of %s: %w", row.ID, err)
	}
	if err := unmarshalJSONField(row.Positions, &s.Positions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal positions of %s: %w", row.ID, err)
	}

	var err error
	if s.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of %s: %w", row.ID, err)
	}
	if s.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at of %s: %w", row.ID, err)
	}
	return s, nil
}
