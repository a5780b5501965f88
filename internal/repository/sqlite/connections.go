package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devicemap/internal/domain"
	apperr "devicemap/internal/errors"
	"devicemap/internal/repository"
)

const connectionSelect = `SELECT ` + connectionColumns + `
	FROM connections c
	LEFT JOIN connection_types ct ON ct.id = c.connection_type_id`

// CreateConnection inserts a connection after checking, in the same
// transaction, that both devices and the optional type exist. On success
// conn carries its ID, CreatedAt and resolved ConnectionType.
func (r *Repository) CreateConnection(ctx context.Context, conn *domain.Connection) error {
	now := time.Now().UTC()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, ref := range []struct {
			role string
			id   int64
		}{
			{"source", conn.SourceID},
			{"destination", conn.DestinationID},
		} {
			found, err := exists(ctx, tx, "devices", ref.id)
			if err != nil {
				return err
			}
			if !found {
				return apperr.NotFound("%s device %d not found", ref.role, ref.id)
			}
		}

		var resolved *domain.ConnectionType
		if conn.ConnectionTypeID != nil {
			var row connectionTypeRow
			err := tx.QueryRowContext(ctx,
				`SELECT `+connectionTypeColumns+` FROM connection_types WHERE id = ?`, *conn.ConnectionTypeID,
			).Scan(row.scanArgs()...)
			if err == sql.ErrNoRows {
				return apperr.NotFound("connection type %d not found", *conn.ConnectionTypeID)
			}
			if err != nil {
				return fmt.Errorf("failed to query connection type: %w", err)
			}
			if resolved, err = row.toDomain(); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO connections (source_id, destination_id, connection_type_id, created_at)
			VALUES (?, ?, ?, ?)
		`, conn.SourceID, conn.DestinationID, int64PtrToNull(conn.ConnectionTypeID), formatTime(now))
		if err != nil {
			return fmt.Errorf("failed to insert connection: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read connection id: %w", err)
		}

		conn.ID = id
		conn.CreatedAt = now
		conn.ConnectionType = resolved
		return nil
	})
}

// GetConnection retrieves a connection with its resolved type, or nil if it does not exist
func (r *Repository) GetConnection(ctx context.Context, id int64) (*domain.Connection, error) {
	var row connectionRow
	err := r.db.QueryRowContext(ctx, connectionSelect+` WHERE c.id = ?`, id).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query connection: %w", err)
	}

	return row.toDomain()
}

// ListConnections returns connections in insertion order with their types resolved
func (r *Repository) ListConnections(ctx context.Context, filter repository.ConnectionFilter) ([]domain.Connection, error) {
	return listConnections(ctx, r.db, filter)
}

func listConnections(ctx context.Context, q querier, filter repository.ConnectionFilter) ([]domain.Connection, error) {
	query := connectionSelect
	var args []any
	if filter.DeviceID != 0 {
		query += ` WHERE c.source_id = ? OR c.destination_id = ?`
		args = append(args, filter.DeviceID, filter.DeviceID)
	}
	query += ` ORDER BY c.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	conns := []domain.Connection{}
	for rows.Next() {
		var row connectionRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conn, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		conns = append(conns, *conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}
	return conns, nil
}
