package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Device is a display endpoint a user registered for mirroring. Devices live
// in the owning user's private registry and are never visible to other users.
type Device struct {
	ID   uuid.UUID
	Name string
	// ShortCode is an 8-character identifier shown in the UI and audit
	// lines. It carries no security weight.
	ShortCode string
	// AuthorizationLabel is inert metadata ("geo-unrestricted" etc.).
	// Nothing enforces it.
	AuthorizationLabel string
	RegisteredAt       time.Time
	LastConnectedAt    *time.Time
}

// DeviceRepository abstracts the per-user device registry.
type DeviceRepository interface {
	Create(ctx context.Context, userID, name, shortCode, authorizationLabel string) (*Device, error)
	ListByUser(ctx context.Context, userID string) ([]Device, error)
	GetByUser(ctx context.Context, deviceID uuid.UUID, userID string) (*Device, error)

	// Exists reports whether the device belongs to the user. This lookup is
	// the sole authorization check in the system.
	Exists(ctx context.Context, deviceID uuid.UUID, userID string) (bool, error)

	// MarkConnected stamps last_connected_at. Returns ErrDeviceNotFound when
	// the device is not in the user's registry.
	MarkConnected(ctx context.Context, deviceID uuid.UUID, userID string, now time.Time) error
}
