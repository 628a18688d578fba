package model_test

import (
	"testing"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price string, storefront int64) model.Product {
	return model.Product{
		ID:    id,
		Name:  "item-" + id,
		Price: decimal.RequireFromString(price),
		Stock: model.Stock{Warehouse: 10, Storefront: storefront},
	}
}

func TestCart_Add_AppendsThenIncrements(t *testing.T) {
	c := model.NewCart("s1")

	require.NoError(t, c.Add(product("p1", "5.00", 3)))
	require.NoError(t, c.Add(product("p2", "1.25", 1)))
	require.NoError(t, c.Add(product("p1", "5.00", 3)))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "p1", c.Lines[0].ProductID)
	assert.Equal(t, int64(2), c.Lines[0].Quantity)
	assert.Equal(t, int64(1), c.Lines[1].Quantity)
	assert.True(t, decimal.RequireFromString("11.25").Equal(c.Total()))
}

func TestCart_Add_RejectsAboveCeiling(t *testing.T) {
	c := model.NewCart("s1")
	p := product("p1", "5.00", 1)

	require.NoError(t, c.Add(p))
	assert.ErrorIs(t, c.Add(p), model.ErrStockCeiling)
	assert.Equal(t, int64(1), c.Lines[0].Quantity)
}

// 店頭在庫0の商品は追加できない
func TestCart_Add_NoStorefrontStock(t *testing.T) {
	c := model.NewCart("s1")

	assert.ErrorIs(t, c.Add(product("p1", "5.00", 0)), model.ErrStockCeiling)
	assert.True(t, c.Empty())
}

// 上限は最新の在庫で更新される
func TestCart_Add_RefreshesCeiling(t *testing.T) {
	c := model.NewCart("s1")
	require.NoError(t, c.Add(product("p1", "5.00", 1)))

	require.NoError(t, c.Add(product("p1", "5.00", 4)))
	assert.Equal(t, int64(4), c.Lines[0].MaxStock)
	assert.Equal(t, int64(2), c.Lines[0].Quantity)
}

func TestCart_Increment(t *testing.T) {
	c := model.NewCart("s1")
	require.NoError(t, c.Add(product("p1", "2.00", 2)))

	require.NoError(t, c.Increment(0))
	assert.ErrorIs(t, c.Increment(0), model.ErrStockCeiling)
	assert.ErrorIs(t, c.Increment(5), model.ErrLineNotFound)
	assert.Equal(t, int64(2), c.Lines[0].Quantity)
}

func TestCart_Decrement_RemovesAtOne(t *testing.T) {
	c := model.NewCart("s1")
	require.NoError(t, c.Add(product("p1", "2.00", 5)))
	require.NoError(t, c.Increment(0))

	require.NoError(t, c.Decrement(0))
	assert.Equal(t, int64(1), c.Lines[0].Quantity)

	require.NoError(t, c.Decrement(0))
	assert.True(t, c.Empty())
	assert.ErrorIs(t, c.Decrement(0), model.ErrLineNotFound)
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := model.NewCart("s1")
	require.NoError(t, c.Add(product("p1", "2.00", 5)))
	require.NoError(t, c.Add(product("p2", "3.00", 5)))
	require.NoError(t, c.Add(product("p3", "4.00", 5)))

	require.NoError(t, c.Remove(1))
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "p3", c.Lines[1].ProductID)
	assert.ErrorIs(t, c.Remove(-1), model.ErrLineNotFound)

	c.Clear()
	assert.True(t, c.Empty())
	assert.True(t, decimal.Zero.Equal(c.Total()))
}

func TestParseRole_FailsClosed(t *testing.T) {
	r, err := model.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, "/admin", r.HomePath())

	r, err = model.ParseRole("seller")
	require.NoError(t, err)
	assert.Equal(t, "/register", r.HomePath())

	_, err = model.ParseRole("vendedor")
	assert.ErrorIs(t, err, model.ErrUnknownRole)
	_, err = model.ParseRole("")
	assert.ErrorIs(t, err, model.ErrUnknownRole)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := model.ParsePaymentMethod("efectivo")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCash, m)

	m, err = model.ParsePaymentMethod("CARD")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCard, m)

	_, err = model.ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, model.ErrUnknownPaymentMethod)
}
