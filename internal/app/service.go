package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/audit"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/metrics"
)

// defaultAuthorizationLabel is attached to every registered device. It is
// descriptive metadata only; no check ever reads it.
const defaultAuthorizationLabel = "geo-unrestricted"

// Service coordinates the device registry and the shared session record.
type Service struct {
	devices  domain.DeviceRepository
	sessions domain.SessionRepository
	events   domain.SessionEvents
	auditLog *audit.Recorder
	clock    clockwork.Clock

	// startGroup collapses concurrent identical starts (same user, same
	// target device). Distinct requests always run their own admission;
	// the conditional session write is the actual exclusivity guarantee.
	startGroup singleflight.Group
}

func NewService(devices domain.DeviceRepository, sessions domain.SessionRepository, events domain.SessionEvents, auditLog *audit.Recorder, clock clockwork.Clock) *Service {
	return &Service{
		devices:  devices,
		sessions: sessions,
		events:   events,
		auditLog: auditLog,
		clock:    clock,
	}
}

// newShortCode generates the 8-character display code stamped on a device at
// registration. Not a secret, just an audit-friendly handle.
func newShortCode() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RegisterDevice validates the name and persists a new device in the user's
// private registry.
func (s *Service) RegisterDevice(ctx context.Context, userID, name string) (*domain.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrDeviceNameEmpty
	}

	device, err := s.devices.Create(ctx, userID, name, newShortCode(), defaultAuthorizationLabel)
	if err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}

	metrics.DevicesRegisteredTotal.Inc()
	s.auditLog.Granted(userID, "device registered device="+device.ShortCode)
	slog.Info("Device registered", "user_id", userID, "device_id", device.ID.String(), "short_code", device.ShortCode)
	return device, nil
}

// ListDevices returns the user's registry in registration order.
func (s *Service) ListDevices(ctx context.Context, userID string) ([]domain.Device, error) {
	return s.devices.ListByUser(ctx, userID)
}

// StartSession admits a mirroring session: the target must be in the
// caller's own registry and the caller must have no active session. Both
// denials are terminal for the call and leave an audit line.
func (s *Service) StartSession(ctx context.Context, userID string, deviceID uuid.UUID) (*domain.Session, error) {
	result, err, _ := s.startGroup.Do(userID+":"+deviceID.String(), func() (any, error) {
		return s.startSession(ctx, userID, deviceID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Session), nil
}

func (s *Service) startSession(ctx context.Context, userID string, deviceID uuid.UUID) (*domain.Session, error) {
	authorized, err := s.devices.Exists(ctx, deviceID, userID)
	if err != nil {
		return nil, fmt.Errorf("authorization lookup: %w", err)
	}
	if !authorized {
		s.deny(userID, "device="+deviceID.String(), "unauthorized_device")
		return nil, domain.ErrDeviceNotAuthorized
	}

	existing, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if existing != nil {
		s.deny(userID, "device="+deviceID.String(), "already_active")
		return nil, domain.ErrSessionActive
	}

	device, err := s.devices.GetByUser(ctx, deviceID, userID)
	if err != nil {
		return nil, fmt.Errorf("device lookup: %w", err)
	}

	now := s.clock.Now().UTC()
	session := &domain.Session{
		OwnerUserID:      userID,
		TargetDeviceID:   device.ID,
		TargetDeviceName: device.Name,
		Status:           domain.StatusConnected,
		StartedAt:        now,
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session record: %w", err)
	}
	if !created {
		// Lost the race between Get and Create. The conditional write keeps
		// the invariant; the loser is reported like any other conflict.
		s.deny(userID, "device="+deviceID.String(), "already_active")
		return nil, domain.ErrSessionActive
	}

	// Admission is committed. The connection stamp is advisory metadata;
	// a failure here must not undo the session.
	if err := s.devices.MarkConnected(ctx, deviceID, userID, now); err != nil {
		slog.Error("Failed to stamp device connection time", "user_id", userID, "device_id", deviceID.String(), "error", err)
	}

	metrics.SessionsStartedTotal.Inc()
	s.auditLog.Granted(userID, "session started device="+device.ShortCode)
	s.notify(ctx, domain.SessionEvent{UserID: userID, Session: session})
	slog.Info("Session started", "user_id", userID, "device_id", device.ID.String(), "device_name", device.Name)
	return session, nil
}

// StopSession ends the user's session. Stopping an already-idle user is not
// an error.
func (s *Service) StopSession(ctx context.Context, userID string) error {
	existing, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("session lookup: %w", err)
	}

	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}

	if existing != nil {
		metrics.SessionsStoppedTotal.Inc()
		s.auditLog.Granted(userID, "session stopped device_name="+existing.TargetDeviceName)
		s.notify(ctx, domain.SessionEvent{UserID: userID, Session: nil})
		slog.Info("Session stopped", "user_id", userID, "device_name", existing.TargetDeviceName)
	}
	return nil
}

// GetActiveSession returns the user's session, or nil when idle.
func (s *Service) GetActiveSession(ctx context.Context, userID string) (*domain.Session, error) {
	return s.sessions.Get(ctx, userID)
}

func (s *Service) deny(userID, detail, reason string) {
	metrics.SessionsDeniedTotal.WithLabelValues(reason).Inc()
	s.auditLog.Denied(userID, detail, reason)
}

// notify pushes the change feed. Failures are logged and swallowed: the
// session state is already committed and must not be rolled back for a
// notification problem.
func (s *Service) notify(ctx context.Context, event domain.SessionEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish session event", "user_id", event.UserID, "error", err)
	}
}
