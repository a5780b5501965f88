package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devicemap/internal/domain"
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

// nullToInt64Ptr converts sql.NullInt64 to *int64
func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// int64PtrToNull converts *int64 to sql.NullInt64
func int64PtrToNull(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// ============================================================================
// Time Helpers
// ============================================================================
//
// Timestamps are stored as RFC 3339 text in UTC so the on-disk format does
// not depend on driver time handling.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ============================================================================
// Row Scanners
// ============================================================================
//
// CRITICAL: Column order must match between the *Columns constant and the
// scanArgs() slice of the same row type.

// deviceColumns returns the SELECT column list for device queries
const deviceColumns = `id, name, device_type, image_ref, created_at`

// deviceRow holds all columns from a device query for scanning
type deviceRow struct {
	ID         int64
	Name       string
	DeviceType string
	ImageRef   sql.NullString
	CreatedAt  string
}

func (r *deviceRow) scanArgs() []any {
	return []any{
		&r.ID,         // 1
		&r.Name,       // 2
		&r.DeviceType, // 3
		&r.ImageRef,   // 4
		&r.CreatedAt,  // 5
	}
}

func (r *deviceRow) toDomain() (*domain.Device, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Device{
		ID:         r.ID,
		Name:       r.Name,
		DeviceType: r.DeviceType,
		ImageRef:   nullToString(r.ImageRef),
		CreatedAt:  createdAt,
	}, nil
}

// connectionTypeColumns returns the SELECT column list for connection type queries
const connectionTypeColumns = `id, name, created_at`

type connectionTypeRow struct {
	ID        int64
	Name      string
	CreatedAt string
}

func (r *connectionTypeRow) scanArgs() []any {
	return []any{&r.ID, &r.Name, &r.CreatedAt}
}

func (r *connectionTypeRow) toDomain() (*domain.ConnectionType, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.ConnectionType{ID: r.ID, Name: r.Name, CreatedAt: createdAt}, nil
}

// connectionColumns selects a connection joined with its (optional) type.
// Queries using it must alias connections as c and LEFT JOIN
// connection_types as ct.
const connectionColumns = `c.id, c.source_id, c.destination_id, c.connection_type_id, c.created_at,
	ct.id, ct.name, ct.created_at`

// connectionRow holds a connection and the columns of its resolved type
type connectionRow struct {
	ID               int64
	SourceID         int64
	DestinationID    int64
	ConnectionTypeID sql.NullInt64
	CreatedAt        string
	TypeID           sql.NullInt64
	TypeName         sql.NullString
	TypeCreatedAt    sql.NullString
}

func (r *connectionRow) scanArgs() []any {
	return []any{
		&r.ID,               // 1
		&r.SourceID,         // 2
		&r.DestinationID,    // 3
		&r.ConnectionTypeID, // 4
		&r.CreatedAt,        // 5
		&r.TypeID,           // 6
		&r.TypeName,         // 7
		&r.TypeCreatedAt,    // 8
	}
}

func (r *connectionRow) toDomain() (*domain.Connection, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}

	conn := &domain.Connection{
		ID:               r.ID,
		SourceID:         r.SourceID,
		DestinationID:    r.DestinationID,
		ConnectionTypeID: nullToInt64Ptr(r.ConnectionTypeID),
		CreatedAt:        createdAt,
	}

	// Unresolvable type ids leave ConnectionType nil
	if r.TypeID.Valid {
		typeCreatedAt, err := parseTime(nullToString(r.TypeCreatedAt))
		if err != nil {
			return nil, err
		}
		conn.ConnectionType = &domain.ConnectionType{
			ID:        r.TypeID.Int64,
			Name:      nullToString(r.TypeName),
			CreatedAt: typeCreatedAt,
		}
	}

	return conn, nil
}

// exists reports whether a row with the given id exists in table.
// table is always a package constant, never user input.
func exists(ctx context.Context, q querier, table string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s %d: %w", table, id, err)
	}
	return true, nil
}
