package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devicemap/internal/domain"
	apperr "devicemap/internal/errors"
)

// CreateDevice inserts a device and sets its ID and CreatedAt
func (r *Repository) CreateDevice(ctx context.Context, device *domain.Device) error {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (name, device_type, image_ref, created_at)
		VALUES (?, ?, ?, ?)
	`, device.Name, device.DeviceType, stringToNull(device.ImageRef), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to insert device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read device id: %w", err)
	}

	device.ID = id
	device.CreatedAt = now
	return nil
}

// GetDevice retrieves a device by ID, or nil if it does not exist
func (r *Repository) GetDevice(ctx context.Context, id int64) (*domain.Device, error) {
	var row deviceRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id,
	).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}

	return row.toDomain()
}

// CountDevicesWithImage counts devices referencing the given image
func (r *Repository) CountDevicesWithImage(ctx context.Context, ref string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE image_ref = ?`, ref,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count devices with image: %w", err)
	}
	return n, nil
}

// ListDevices returns all devices in insertion order
func (r *Repository) ListDevices(ctx context.Context) ([]domain.Device, error) {
	return listDevices(ctx, r.db)
}

func listDevices(ctx context.Context, q querier) ([]domain.Device, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := []domain.Device{}
	for rows.Next() {
		var row deviceRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		device, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}
	return devices, nil
}

// DeleteDevice removes a device, applying policy to the connections that
// reference it. Returns NOT_FOUND if the device does not exist and
// CONFLICT under DeletePolicyRestrict while connections reference it.
func (r *Repository) DeleteDevice(ctx context.Context, id int64, policy domain.DeletePolicy) (*domain.DeleteResult, error) {
	result := &domain.DeleteResult{DeviceID: id, Policy: policy}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, "devices", id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound("device %d not found", id)
		}

		var referencing int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM connections WHERE source_id = ? OR destination_id = ?
		`, id, id).Scan(&referencing); err != nil {
			return fmt.Errorf("failed to count connections for device %d: %w", id, err)
		}

		switch policy {
		case domain.DeletePolicyRestrict:
			if referencing > 0 {
				return apperr.Conflict("device %d is referenced by %d connection(s)", id, referencing)
			}
		case domain.DeletePolicyCascade:
			res, err := tx.ExecContext(ctx, `
				DELETE FROM connections WHERE source_id = ? OR destination_id = ?
			`, id, id)
			if err != nil {
				return fmt.Errorf("failed to delete connections for device %d: %w", id, err)
			}
			removed, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to count deleted connections: %w", err)
			}
			result.ConnectionsRemoved = int(removed)
		default:
			result.ConnectionsOrphaned = referencing
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete device: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
