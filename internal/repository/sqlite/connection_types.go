package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devicemap/internal/domain"
	apperr "devicemap/internal/errors"
)

// CreateConnectionType inserts a connection type. A duplicate name returns CONFLICT.
func (r *Repository) CreateConnectionType(ctx context.Context, ct *domain.ConnectionType) error {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO connection_types (name, created_at) VALUES (?, ?)
	`, ct.Name, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("connection type %q already exists", ct.Name)
		}
		return fmt.Errorf("failed to insert connection type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read connection type id: %w", err)
	}

	ct.ID = id
	ct.CreatedAt = now
	return nil
}

// GetConnectionType retrieves a connection type by ID, or nil if it does not exist
func (r *Repository) GetConnectionType(ctx context.Context, id int64) (*domain.ConnectionType, error) {
	var row connectionTypeRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+connectionTypeColumns+` FROM connection_types WHERE id = ?`, id,
	).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query connection type: %w", err)
	}

	return row.toDomain()
}

// ListConnectionTypes returns all connection types in insertion order
func (r *Repository) ListConnectionTypes(ctx context.Context) ([]domain.ConnectionType, error) {
	return listConnectionTypes(ctx, r.db)
}

func listConnectionTypes(ctx context.Context, q querier) ([]domain.ConnectionType, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+connectionTypeColumns+` FROM connection_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connection types: %w", err)
	}
	defer rows.Close()

	types := []domain.ConnectionType{}
	for rows.Next() {
		var row connectionTypeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan connection type: %w", err)
		}
		ct, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		types = append(types, *ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connection types: %w", err)
	}
	return types, nil
}
