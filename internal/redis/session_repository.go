package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
)

func sessionKey(userID string) string {
	return "session:" + userID
}

// SessionRepo implements domain.SessionRepository on Redis. One JSON
// document per user; the key's existence is the "mirroring active" bit.
type SessionRepo struct {
	rdb *goredis.Client
}

func NewSessionRepo(rdb *goredis.Client) *SessionRepo {
	return &SessionRepo{rdb: rdb}
}

// Create writes the session only if the user has no record yet. SETNX makes
// the admission decision atomic: of two racing starts exactly one wins.
func (s *SessionRepo) Create(ctx context.Context, session *domain.Session) (bool, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return false, fmt.Errorf("failed to marshal session: %w", err)
	}

	created, err := s.rdb.SetNX(ctx, sessionKey(session.OwnerUserID), payload, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to create session record: %w", err)
	}
	return created, nil
}

func (s *SessionRepo) Get(ctx context.Context, userID string) (*domain.Session, error) {
	payload, err := s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the record. Deleting an absent record is a no-op, which
// gives stopSession its idempotence.
func (s *SessionRepo) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}
