package events

import (
	"context"
	"testing"
	"time"

	"loanvault-backend/internal/domain/event"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestPublish_AppendsToStream(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	p := NewRedisPublisher(rdb, "", zerolog.Nop())
	p.Publish(context.Background(), event.Event{
		ID:     "evt-1",
		Kind:   event.LoanStarted,
		At:     time.Now().UTC(),
		Fields: map[string]any{"loan_id": 1},
	})

	msgs, err := rdb.XRange(context.Background(), DefaultStream, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("stream length = %d, want 1", len(msgs))
	}
	if msgs[0].Values["kind"] != string(event.LoanStarted) {
		t.Fatalf("kind = %v", msgs[0].Values["kind"])
	}
	if msgs[0].Values["id"] != "evt-1" {
		t.Fatalf("id = %v", msgs[0].Values["id"])
	}
}

func TestPublish_RedisDown_DoesNotPanic(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	s.Close()

	p := NewRedisPublisher(rdb, "x", zerolog.Nop())
	p.Publish(context.Background(), event.Event{ID: "evt-2", Kind: event.LoanRepaid, At: time.Now()})
}
