package repository

import (
	"context"

	"devicemap/internal/domain"
)

// DeviceRepository persists devices
type DeviceRepository interface {
	CreateDevice(ctx context.Context, device *domain.Device) error
	GetDevice(ctx context.Context, id int64) (*domain.Device, error)
	ListDevices(ctx context.Context) ([]domain.Device, error)
	DeleteDevice(ctx context.Context, id int64, policy domain.DeletePolicy) (*domain.DeleteResult, error)
	// CountDevicesWithImage counts devices whose image reference is ref
	CountDevicesWithImage(ctx context.Context, ref string) (int, error)
}

// ConnectionTypeRepository persists the connection type catalog
type ConnectionTypeRepository interface {
	CreateConnectionType(ctx context.Context, ct *domain.ConnectionType) error
	GetConnectionType(ctx context.Context, id int64) (*domain.ConnectionType, error)
	ListConnectionTypes(ctx context.Context) ([]domain.ConnectionType, error)
}

// ConnectionFilter narrows ListConnections. Zero value matches everything.
type ConnectionFilter struct {
	// DeviceID matches connections where the device is source or destination
	DeviceID int64
}

// ConnectionRepository persists connections
type ConnectionRepository interface {
	CreateConnection(ctx context.Context, conn *domain.Connection) error
	GetConnection(ctx context.Context, id int64) (*domain.Connection, error)
	ListConnections(ctx context.Context, filter ConnectionFilter) ([]domain.Connection, error)
}

// Repository is the complete data access surface
type Repository interface {
	DeviceRepository
	ConnectionTypeRepository
	ConnectionRepository

	// Snapshot reads all three tables in one transaction
	Snapshot(ctx context.Context) (*domain.Inventory, error)

	// Close releases resources
	Close() error
}
