package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	c, err := OpenRedis(s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// the client must serve both workloads this process puts on it
	if err := c.SetNX(ctx, "idemp:lv:probe", "1", time.Minute).Err(); err != nil {
		t.Fatalf("SETNX err: %v", err)
	}
	args := &redis.XAddArgs{Stream: "events", Values: map[string]any{"kind": "probe"}}
	if err := c.XAdd(ctx, args).Err(); err != nil {
		t.Fatalf("XADD err: %v", err)
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	if _, err := OpenRedis("not-a-real-host:6379", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}
