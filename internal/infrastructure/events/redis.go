package events

import (
	"context"
	"encoding/json"
	"time"

	"loanvault-backend/internal/domain/event"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultStream is the redis stream ledger events land on.
const DefaultStream = "loanvault:events"

const publishTimeout = 2 * time.Second

// RedisPublisher appends events to a redis stream and mirrors them to the
// structured log. Delivery is best effort; ledger state never depends on it.
type RedisPublisher struct {
	rdb    *redis.Client
	stream string
	log    zerolog.Logger
}

func NewRedisPublisher(rdb *redis.Client, stream string, log zerolog.Logger) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{rdb: rdb, stream: stream, log: log}
}

var _ event.Publisher = (*RedisPublisher)(nil)

func (p *RedisPublisher) Publish(ctx context.Context, e event.Event) {
	fields, err := json.Marshal(e.Fields)
	if err != nil {
		p.log.Error().Err(err).Str("kind", string(e.Kind)).Msg("event: marshal fields")
		return
	}

	p.log.Info().
		Str("event_id", e.ID).
		Str("kind", string(e.Kind)).
		RawJSON("fields", fields).
		Msg("ledger event")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":     e.ID,
			"kind":   string(e.Kind),
			"at":     e.At.UTC().Format(time.RFC3339Nano),
			"fields": string(fields),
		},
	}).Err()
	if err != nil {
		p.log.Error().Err(err).Str("kind", string(e.Kind)).Msg("event: xadd failed")
	}
}
