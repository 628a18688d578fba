// Package feed は台帳の変更通知（ライブ表示の購読用）
package feed

import (
	"context"
	"sync"
	"time"
)

type Topic string

const (
	TopicProducts Topic = "products"
	TopicSales    Topic = "sales"
)

// 中身は持たない。受け取った側が最新を読み直す
type Event struct {
	Topic Topic     `json:"topic"`
	At    time.Time `json:"at"`
}

// コミット後に呼ぶ
type Publisher interface {
	Publish(ctx context.Context, topic Topic)
}

type Subscriber interface {
	Subscribe(topic Topic) (<-chan Event, func())
}

// プロセス内の購読者へ配る
type Hub struct {
	mu   sync.RWMutex
	subs map[Topic]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[Topic]map[chan Event]struct{}{}}
}

// cancelを呼ぶまで有効。バッファ1で、遅い購読者には通知をまとめる
func (h *Hub) Subscribe(topic Topic) (<-chan Event, func()) {
	ch := make(chan Event, 1)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = map[chan Event]struct{}{}
	}
	h.subs[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[topic], ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(ctx context.Context, topic Topic) {
	h.Broadcast(Event{Topic: topic, At: time.Now()})
}

// 詰まっている購読者は飛ばす（未読の通知が1つあれば十分）
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) Subscribers(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// 複数の通知先へ
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, topic Topic) {
	for _, p := range m {
		p.Publish(ctx, topic)
	}
}

// 何もしない（テスト用）
type Nop struct{}

func (Nop) Publish(context.Context, Topic) {}
