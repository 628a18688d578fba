package repository

import (
	"context"
	"os"
	"testing"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// REDIS_TEST_URL があるときだけ実行
func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCartRedis_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	r := NewCartRedisRepository(newTestRedis(t))
	t.Cleanup(func() { _ = r.Delete(ctx, "seller-test") })

	empty, err := r.Get(ctx, "seller-test")
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	c := model.NewCart("seller-test")
	require.NoError(t, c.Add(model.Product{ID: "p1", Name: "Taza", Price: decimal.RequireFromString("35.50"), Stock: model.Stock{Storefront: 2}}))
	require.NoError(t, r.Save(ctx, c))

	got, err := r.Get(ctx, "seller-test")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, decimal.RequireFromString("35.5").Equal(got.Lines[0].UnitPrice))
	assert.Equal(t, int64(2), got.Lines[0].MaxStock)

	require.NoError(t, r.Delete(ctx, "seller-test"))
	gone, err := r.Get(ctx, "seller-test")
	require.NoError(t, err)
	assert.True(t, gone.Empty())
}
