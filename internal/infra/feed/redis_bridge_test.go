package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 接続できないRedis
func deadRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func waitEvent(t *testing.T, ch <-chan Event, want Topic) {
	t.Helper()
	select {
	case ev := <-ch:
		assert.Equal(t, want, ev.Topic)
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}
}

// 購読が止まったあとも手元の購読者には届く
func TestRedisBridge_PublishReachesHubWhileDisconnected(t *testing.T) {
	hub := NewHub()
	b := NewRedisBridge(deadRedis(t), hub, logger.Discard())
	b.backoff = func(int) time.Duration { return time.Millisecond }

	ch, cancel := hub.Subscribe(TopicProducts)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	b.Publish(context.Background(), TopicProducts)
	waitEvent(t, ch, TopicProducts)
	assert.False(t, b.live.Load())

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// 購読に失敗しても諦めずに再試行する
func TestRedisBridge_RunRetriesUntilCanceled(t *testing.T) {
	hub := NewHub()
	b := NewRedisBridge(deadRedis(t), hub, logger.Discard())

	var attempts atomic.Int32
	b.backoff = func(int) time.Duration {
		attempts.Add(1)
		return time.Millisecond
	}

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return attempts.Load() >= 3 }, 5*time.Second, 10*time.Millisecond)

	// 再試行中のPublishもHubへ
	ch, cancel := hub.Subscribe(TopicSales)
	defer cancel()
	b.Publish(context.Background(), TopicSales)
	waitEvent(t, ch, TopicSales)

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestBridgeBackoff_Capped(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, bridgeBackoff(0))
	assert.Equal(t, 400*time.Millisecond, bridgeBackoff(1))
	assert.Equal(t, bridgeRetryMax, bridgeBackoff(6))
	assert.Equal(t, bridgeRetryMax, bridgeBackoff(50))
}
