package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
)

// deviceColumns must match the Scan order in scanDevice.
const deviceColumns = `id, name, short_code, authorization_label, registered_at, last_connected_at`

// DeviceRepo implements domain.DeviceRepository backed by PostgreSQL.
type DeviceRepo struct {
	pool *pgxpool.Pool
}

func NewDeviceRepo(pool *pgxpool.Pool) *DeviceRepo {
	return &DeviceRepo{pool: pool}
}

func scanDevice(row pgx.Row) (*domain.Device, error) {
	var device domain.Device
	err := row.Scan(
		&device.ID, &device.Name, &device.ShortCode, &device.AuthorizationLabel,
		&device.RegisteredAt, &device.LastConnectedAt,
	)
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepo) Create(ctx context.Context, userID, name, shortCode, authorizationLabel string) (*domain.Device, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO devices (user_id, name, short_code, authorization_label)
		VALUES ($1, $2, $3, $4)
		RETURNING `+deviceColumns,
		userID, name, shortCode, authorizationLabel)

	device, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	return device, nil
}

func (r *DeviceRepo) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE user_id = $1
		ORDER BY registered_at, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}
	return devices, nil
}

func (r *DeviceRepo) GetByUser(ctx context.Context, deviceID uuid.UUID, userID string) (*domain.Device, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE id = $1 AND user_id = $2`,
		deviceID, userID)

	device, err := scanDevice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return device, nil
}

func (r *DeviceRepo) Exists(ctx context.Context, deviceID uuid.UUID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM devices WHERE id = $1 AND user_id = $2)`,
		deviceID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check device existence: %w", err)
	}
	return exists, nil
}

func (r *DeviceRepo) MarkConnected(ctx context.Context, deviceID uuid.UUID, userID string, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE devices
		SET last_connected_at = $1
		WHERE id = $2 AND user_id = $3`,
		now, deviceID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark device connected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}
