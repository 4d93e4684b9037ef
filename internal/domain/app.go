package domain

import (
	"context"

	"github.com/google/uuid"
)

// AppService is the application layer contract - handlers route all
// operations through here.
type AppService interface {
	RegisterDevice(ctx context.Context, userID, name string) (*Device, error)
	ListDevices(ctx context.Context, userID string) ([]Device, error)

	StartSession(ctx context.Context, userID string, deviceID uuid.UUID) (*Session, error)
	StopSession(ctx context.Context, userID string) error
	GetActiveSession(ctx context.Context, userID string) (*Session, error)
}
