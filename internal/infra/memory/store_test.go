package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/infra/memory"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *memory.Store, id string, at time.Time, stock model.Stock) model.Product {
	t.Helper()
	p, err := s.Products().Create(context.Background(), model.Product{
		ID: id, Barcode: "bc-" + id, Name: "Producto " + id, Category: "General",
		Stock: stock, CreatedAt: at, UpdatedAt: at,
	})
	require.NoError(t, err)
	return p
}

// 失敗したTxの書き込みは残らない
func TestWithinTx_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "p1", time.Now(), model.Stock{Warehouse: 10})

	boom := errors.New("boom")
	err := s.TxManager().WithinTx(ctx, func(r repo.TxRepos) error {
		require.NoError(t, r.Products().SetStock(ctx, "p1", model.Stock{Warehouse: 10}, model.Stock{Warehouse: 1, Storefront: 9}))
		_, err := r.Sales().Create(ctx, model.Sale{ID: "s1"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Products().FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.Stock{Warehouse: 10}, p.Stock)

	sales, err := s.Sales().List(ctx, repo.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestWithinTx_CommitApplies(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "p1", time.Now(), model.Stock{Warehouse: 10})

	err := s.TxManager().WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Products().SetStock(ctx, "p1", model.Stock{Warehouse: 10}, model.Stock{Warehouse: 6, Storefront: 4})
	})
	require.NoError(t, err)

	p, _ := s.Products().FindByID(ctx, "p1")
	assert.Equal(t, model.Stock{Warehouse: 6, Storefront: 4}, p.Stock)
}

func TestSetStock_ConflictOnStaleExpected(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "p1", time.Now(), model.Stock{Warehouse: 10})

	err := s.Products().SetStock(ctx, "p1", model.Stock{Warehouse: 9}, model.Stock{Warehouse: 0})
	assert.ErrorIs(t, err, repo.ErrConflict)
	assert.ErrorIs(t, s.Products().SetStock(ctx, "nope", model.Stock{}, model.Stock{}), repo.ErrNotFound)
}

// 同じ状態なら何度読んでも同じ順序
func TestProducts_ListOrderedAndStable(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, s, "a", base, model.Stock{Storefront: 1})
	seed(t, s, "b", base.Add(time.Hour), model.Stock{Storefront: 0})
	seed(t, s, "c", base.Add(2*time.Hour), model.Stock{Storefront: 3})

	first, err := s.Products().List(ctx, repo.ProductListQuery{})
	require.NoError(t, err)
	second, err := s.Products().List(ctx, repo.ProductListQuery{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"c", "b", "a"}, ids(first))

	inStore, _ := s.Products().List(ctx, repo.ProductListQuery{InStorefront: true})
	assert.Equal(t, []string{"c", "a"}, ids(inStore))

	byBarcode, _ := s.Products().List(ctx, repo.ProductListQuery{Q: "BC-B"})
	assert.Equal(t, []string{"b"}, ids(byBarcode))
}

func TestProducts_BarcodeUnique(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "a", time.Now(), model.Stock{})

	_, err := s.Products().Create(ctx, model.Product{ID: "b", Barcode: "bc-a"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	p, err := s.Products().FindByBarcode(ctx, "bc-a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.ID)
}

func TestSales_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, at := range []time.Time{day.Add(-24 * time.Hour), day, day.Add(time.Hour)} {
		seller := "a"
		if i == 2 {
			seller = "b"
		}
		_, err := s.Sales().Create(ctx, model.Sale{
			ID: string(rune('x' + i)), SellerID: seller, CreatedAt: at,
			Items: []model.SaleItem{{ProductID: "p"}, {ProductID: "q"}},
		})
		require.NoError(t, err)
	}

	from := day.Add(-time.Hour)
	got, err := s.Sales().List(ctx, repo.SaleFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, 1, got[0].Items[1].Position)

	mine, _ := s.Sales().List(ctx, repo.SaleFilter{SellerID: "a"})
	assert.Len(t, mine, 2)
}

func TestUsers_EmailUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	require.NoError(t, s.Users().Create(ctx, &model.User{ID: "u1", Email: "ana@bazar.mx", Role: model.RoleSeller}))
	assert.ErrorIs(t, s.Users().Create(ctx, &model.User{ID: "u2", Email: "ANA@bazar.mx"}), repo.ErrDuplicate)

	u, err := s.Users().FindByEmail(ctx, "Ana@Bazar.mx")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, s.Users().IncrementTokenVersion(ctx, "u1"))
	u, _ = s.Users().FindByID(ctx, "u1")
	assert.Equal(t, 1, u.TokenVersion)

	_, err = s.Users().FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}

func TestCarts_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	c, err := s.Carts().Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, c.Empty())

	c.Lines = append(c.Lines, model.CartLine{ProductID: "p1", Quantity: 1, MaxStock: 3})
	require.NoError(t, s.Carts().Save(ctx, c))

	got, _ := s.Carts().Get(ctx, "s1")
	got.Lines[0].Quantity = 99
	again, _ := s.Carts().Get(ctx, "s1")
	assert.Equal(t, int64(1), again.Lines[0].Quantity)

	require.NoError(t, s.Carts().Delete(ctx, "s1"))
	gone, _ := s.Carts().Get(ctx, "s1")
	assert.True(t, gone.Empty())
}

func ids(ps []model.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

// 合計はListの上限に関係なく全件
func TestSales_SummarizeIgnoresLimit(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 250; i++ {
		_, err := s.Sales().Create(ctx, model.Sale{
			ID: fmt.Sprintf("s%03d", i), SellerID: "a",
			Total: decimal.RequireFromString("2.50"), CreatedAt: day.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	f := repo.SaleFilter{SellerID: "a", Limit: 10}
	listed, err := s.Sales().List(ctx, f)
	require.NoError(t, err)
	assert.Len(t, listed, 10)

	sum, err := s.Sales().Summarize(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 250, sum.Count)
	assert.Equal(t, "625", sum.Total.String())

	other, err := s.Sales().Summarize(ctx, repo.SaleFilter{SellerID: "b"})
	require.NoError(t, err)
	assert.Equal(t, 0, other.Count)
	assert.True(t, other.Total.IsZero())
}

// 一覧の上限を超えても古い在庫少が拾える
func TestProducts_ListLowStockHasNoCap(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seed(t, s, "aaa-old", base, model.Stock{Warehouse: 20, Storefront: 0})
	for i := 0; i < 600; i++ {
		seed(t, s, fmt.Sprintf("p%04d", i), base.Add(time.Duration(i+1)*time.Minute), model.Stock{Storefront: 10})
	}
	seed(t, s, "zzz-new", base.Add(24*time.Hour), model.Stock{Storefront: 4})

	recent, err := s.Products().List(ctx, repo.ProductListQuery{})
	require.NoError(t, err)
	require.Len(t, recent, 500)

	low, err := s.Products().ListLowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "aaa-old", low[0].ID)
	assert.Equal(t, "zzz-new", low[1].ID)
}

// 在庫の書き換えでupdated_atは動かない
func TestSetStock_KeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, s, "p1", at, model.Stock{Warehouse: 10})

	require.NoError(t, s.Products().SetStock(ctx, "p1", model.Stock{Warehouse: 10}, model.Stock{Warehouse: 7, Storefront: 3}))

	p, err := s.Products().FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.Stock{Warehouse: 7, Storefront: 3}, p.Stock)
	assert.True(t, p.UpdatedAt.Equal(at))
}
