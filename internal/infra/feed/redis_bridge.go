package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisChannel = "pos:feed"

	bridgeRetryBase = 200 * time.Millisecond
	bridgeRetryMax  = 10 * time.Second
)

var errSubscriptionClosed = errors.New("feed subscription closed")

// 複数インスタンス間で通知を共有する。
// 購読中はRedisにだけ送り、自分の分も購読ループ経由でHubに届く。
// 購読できていない間は手元のHubにも直接流す。
type RedisBridge struct {
	client  redis.UniversalClient
	hub     *Hub
	log     *slog.Logger
	live    atomic.Bool
	backoff func(attempt int) time.Duration
}

func NewRedisBridge(client redis.UniversalClient, hub *Hub, log *slog.Logger) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, log: log, backoff: bridgeBackoff}
}

func (b *RedisBridge) Publish(ctx context.Context, topic Topic) {
	data, err := json.Marshal(Event{Topic: topic})
	if err != nil {
		return
	}
	err = b.client.Publish(context.WithoutCancel(ctx), redisChannel, data).Err()
	if err != nil {
		b.log.WarnContext(ctx, "feed publish failed", "topic", string(topic), "error", err)
	}
	if err != nil || !b.live.Load() {
		b.hub.Publish(ctx, topic)
	}
}

// ctxが終わるまでRedisの通知をHubへ流す。切れたら待って購読し直す
func (b *RedisBridge) Run(ctx context.Context) {
	attempt := 0
	for {
		subscribed, err := b.subscribeOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if subscribed {
			attempt = 0
		}
		wait := b.backoff(attempt)
		b.log.WarnContext(ctx, "feed bridge disconnected",
			"attempt", attempt+1, "retry_in", wait.String(), "error", err)
		attempt++

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// 購読できたかどうかと、切れた理由を返す
func (b *RedisBridge) subscribeOnce(ctx context.Context) (bool, error) {
	sub := b.client.Subscribe(ctx, redisChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, err
	}
	b.live.Store(true)
	defer b.live.Store(false)
	b.log.InfoContext(ctx, "feed bridge subscribed", "channel", redisChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errSubscriptionClosed
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("feed message dropped", "error", err)
				continue
			}
			b.hub.Publish(ctx, ev.Topic)
		}
	}
}

// 200ms, 400ms, ... 上限10s
func bridgeBackoff(attempt int) time.Duration {
	if attempt > 6 {
		return bridgeRetryMax
	}
	d := bridgeRetryBase << attempt
	if d > bridgeRetryMax {
		d = bridgeRetryMax
	}
	return d
}
