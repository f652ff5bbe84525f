package eventstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/pkg/logger"
)

const (
	redisGlobalKey = "mailtrace:events"
	redisIDPrefix  = "mailtrace:events:"
)

// RedisStore keeps the event log in Redis: one list per tracking ID plus
// a global list preserving overall append order. RPUSH is atomic, so the
// append-only discipline needs no extra locking.
type RedisStore struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewRedisStore verifies connectivity and returns the store.
func NewRedisStore(ctx context.Context, rdb *redis.Client, lg *logger.Logger) (*RedisStore, error) {
	if lg == nil {
		lg = logger.Default()
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, log: lg}, nil
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, evt domain.Event) error {
	if evt.TrackingID == "" {
		return fmt.Errorf("eventstore: event missing tracking id")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, redisIDPrefix+evt.TrackingID, data)
	pipe.RPush(ctx, redisGlobalKey, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

// Query implements Store.
func (s *RedisStore) Query(ctx context.Context, trackingID string) ([]domain.Event, error) {
	raw, err := s.rdb.LRange(ctx, redisIDPrefix+trackingID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis query: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}
	return s.decode(raw), nil
}

// All implements Store.
func (s *RedisStore) All(ctx context.Context) ([]domain.Event, error) {
	raw, err := s.rdb.LRange(ctx, redisGlobalKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return s.decode(raw), nil
}

// decode skips entries that no longer parse rather than failing the read.
func (s *RedisStore) decode(raw []string) []domain.Event {
	events := make([]domain.Event, 0, len(raw))
	for _, item := range raw {
		var evt domain.Event
		if err := json.Unmarshal([]byte(item), &evt); err != nil {
			s.log.Warn("skipping unreadable event record", "error", err.Error())
			continue
		}
		events = append(events, evt)
	}
	return events
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
