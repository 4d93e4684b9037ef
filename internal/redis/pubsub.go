package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
)

func eventChannel(userID string) string {
	return "session-events:" + userID
}

// PubSub implements domain.SessionEvents on Redis Pub/Sub. Delivery is
// best-effort; the coordinator never waits on it.
type PubSub struct {
	rdb *goredis.Client
}

func NewPubSub(rdb *goredis.Client) *PubSub {
	return &PubSub{rdb: rdb}
}

func (ps *PubSub) Publish(ctx context.Context, event domain.SessionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}
	if err := ps.rdb.Publish(ctx, eventChannel(event.UserID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	return nil
}

// subscription is an active Pub/Sub subscription for one user.
type subscription struct {
	sub    *goredis.PubSub
	ch     <-chan domain.SessionEvent
	cancel context.CancelFunc
}

func (s *subscription) Events() <-chan domain.SessionEvent { return s.ch }

func (s *subscription) Close() {
	s.cancel()
	_ = s.sub.Close()
}

// Subscribe delivers session events for a user until Close is called or ctx
// ends. Slow receivers drop events rather than block the dispatch path.
func (ps *PubSub) Subscribe(ctx context.Context, userID string) domain.Subscription {
	sub := ps.rdb.Subscribe(ctx, eventChannel(userID))

	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan domain.SessionEvent, 16)

	go func() {
		defer close(ch)
		msgCh := sub.Channel()
		for {
			select {
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				var event domain.SessionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Error("Failed to unmarshal session event", "error", err)
					continue
				}
				select {
				case ch <- event:
				default:
					// Drop if receiver is slow
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &subscription{sub: sub, ch: ch, cancel: cancel}
}
