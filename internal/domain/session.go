package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStatus has a single live value. An absent session record means
// "idle" - there is no persisted disconnected state.
type SessionStatus string

const StatusConnected SessionStatus = "connected"

// Session is the singleton record representing an active mirroring
// connection for a user. Existence of the record is the sole source of truth
// for "is mirroring active".
type Session struct {
	OwnerUserID    string        `json:"owner_user_id"`
	TargetDeviceID uuid.UUID     `json:"target_device_id"`
	// TargetDeviceName is copied from the device at start time. It is a
	// display cache, not an invariant; devices cannot be renamed so it never
	// goes stale in practice.
	TargetDeviceName string        `json:"target_device_name"`
	Status           SessionStatus `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
}

// SessionRepository abstracts the shared session record, keyed by user.
type SessionRepository interface {
	// Create writes the session only if no record exists for the user.
	// Returns false (and no error) when a record is already present, so the
	// caller can surface ErrSessionActive without a read-modify-write race.
	Create(ctx context.Context, session *Session) (bool, error)

	// Get returns nil without error when the user has no active session.
	Get(ctx context.Context, userID string) (*Session, error)

	// Delete removes the session record. Deleting an absent record is not
	// an error.
	Delete(ctx context.Context, userID string) error
}

// SessionEvent is pushed to subscribers on every session mutation. Session
// is nil when the session ended.
type SessionEvent struct {
	UserID  string   `json:"user_id"`
	Session *Session `json:"session"`
}

// SessionEvents publishes and delivers session change notifications. The
// coordinator's correctness never depends on delivery order or latency;
// notifications only drive UI refresh.
type SessionEvents interface {
	Publish(ctx context.Context, event SessionEvent) error
	Subscribe(ctx context.Context, userID string) Subscription
}

// Subscription is an active change feed for one user's session record.
type Subscription interface {
	Events() <-chan SessionEvent
	Close()
}
