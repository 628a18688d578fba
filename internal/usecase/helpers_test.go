package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"
	"github.com/Ignaci05/Area51Bazar/internal/infra/memory"
	"github.com/Ignaci05/Area51Bazar/internal/logger"
	"github.com/Ignaci05/Area51Bazar/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

// 通知の記録
type recorder struct {
	mu     sync.Mutex
	topics []feed.Topic
}

func (r *recorder) Publish(ctx context.Context, topic feed.Topic) {
	r.mu.Lock()
	r.topics = append(r.topics, topic)
	r.mu.Unlock()
}

func (r *recorder) count(topic feed.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.topics {
		if t == topic {
			n++
		}
	}
	return n
}

type env struct {
	store *memory.Store
	clock *fixedClock
	feed  *recorder
	deps  usecase.Deps
}

func newEnv() *env {
	e := &env{
		store: memory.NewStore(),
		clock: &fixedClock{t: testNow},
		feed:  &recorder{},
	}
	e.deps = usecase.Deps{
		Notifier: e.feed,
		Log:      logger.Discard(),
		Clock:    e.clock,
		IDs:      &seqIDs{},
	}
	return e
}

func (e *env) inventory() *usecase.InventoryUsecase {
	return usecase.NewInventoryUsecase(e.store.TxManager(), e.store.Products(), e.deps)
}

func (e *env) sales() *usecase.SaleUsecase {
	return usecase.NewSaleUsecase(e.store.TxManager(), e.store.Sales(), e.store.Users(), e.deps)
}

func (e *env) register() *usecase.RegisterUsecase {
	return usecase.NewRegisterUsecase(e.store.Carts(), e.store.Products(), e.sales(), e.deps)
}

func (e *env) stats() *usecase.StatsUsecase {
	return usecase.NewStatsUsecase(e.store.Sales(), e.store.Products(), time.UTC, e.deps)
}

func (e *env) seed(t *testing.T, id string, price string, stock model.Stock) model.Product {
	t.Helper()
	p, err := e.store.Products().Create(context.Background(), model.Product{
		ID:        id,
		Barcode:   "bc-" + id,
		Name:      "Producto " + id,
		Category:  "Juguetes",
		Price:     decimal.RequireFromString(price),
		Cost:      decimal.Zero,
		Stock:     stock,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})
	require.NoError(t, err)
	return p
}

func (e *env) stock(t *testing.T, id string) model.Stock {
	t.Helper()
	p, err := e.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func kindOf(t *testing.T, err error) usecase.ErrorKind {
	t.Helper()
	require.Error(t, err)
	e, ok := usecase.AsError(err)
	require.True(t, ok, "expected usecase error, got %v", err)
	return e.Kind
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
