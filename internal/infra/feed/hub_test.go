package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	h := feed.NewHub()
	products, cancelP := h.Subscribe(feed.TopicProducts)
	defer cancelP()
	sales, cancelS := h.Subscribe(feed.TopicSales)
	defer cancelS()

	h.Publish(context.Background(), feed.TopicProducts)

	select {
	case ev := <-products:
		assert.Equal(t, feed.TopicProducts, ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}

	select {
	case <-sales:
		t.Fatal("sales subscriber should not receive products event")
	default:
	}
}

// 読まない購読者がいてもPublishは止まらない
func TestHub_SlowSubscriberCoalesces(t *testing.T) {
	h := feed.NewHub()
	ch, cancel := h.Subscribe(feed.TopicSales)
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Publish(context.Background(), feed.TopicSales)
	}

	assert.Len(t, ch, 1)
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	h := feed.NewHub()
	_, cancel := h.Subscribe(feed.TopicProducts)
	assert.Equal(t, 1, h.Subscribers(feed.TopicProducts))

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers(feed.TopicProducts))
}

func TestMulti_FansOut(t *testing.T) {
	a, b := feed.NewHub(), feed.NewHub()
	cha, ca := a.Subscribe(feed.TopicProducts)
	defer ca()
	chb, cb := b.Subscribe(feed.TopicProducts)
	defer cb()

	feed.Multi{a, b, feed.Nop{}}.Publish(context.Background(), feed.TopicProducts)

	assert.Len(t, cha, 1)
	assert.Len(t, chb, 1)
}
