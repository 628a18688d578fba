package report_test

import (
	"testing"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/domain/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sale(total string, at time.Time, seller string) model.Sale {
	return model.Sale{Total: decimal.RequireFromString(total), CreatedAt: at, SellerID: seller}
}

func TestDayWindow_Bounds(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	w := report.DayWindow(time.Date(2024, 3, 9, 15, 4, 5, 0, loc), loc)

	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, 999000000, loc), w.End)
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Millisecond)))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
}

// 日付は店舗のタイムゾーンで切る
func TestDayWindow_UsesLocation(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	// UTC 03:00 は前日の21:00
	w := report.DayWindow(time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, 9, w.Start.Day())
}

func TestSummarize_ThreeSalesInDay(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)
	w := report.DayWindow(day, loc)

	sales := []model.Sale{
		sale("10.00", day.Add(-11*time.Hour), "a"),
		sale("5.50", day, "b"),
		sale("20.00", day.Add(11*time.Hour), "a"),
		// 前日
		sale("99.99", day.Add(-13*time.Hour), "a"),
	}

	got := report.Summarize(sales, w, "")
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "35.5", got.Total.String())
	assert.True(t, decimal.RequireFromString("35.50").Equal(got.Total))
}

func TestSummarize_BySeller(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)
	w := report.DayWindow(day, loc)

	sales := []model.Sale{
		sale("10.00", day, "a"),
		sale("5.50", day, "b"),
		sale("20.00", day, "a"),
	}

	got := report.Summarize(sales, w, "a")
	assert.Equal(t, 2, got.Count)
	assert.True(t, decimal.RequireFromString("30").Equal(got.Total))
}

func TestSummarize_Empty(t *testing.T) {
	got := report.Summarize(nil, report.DayWindow(time.Now(), time.UTC), "")
	assert.Equal(t, 0, got.Count)
	assert.True(t, got.Total.IsZero())
}

func TestLowStock_StrictlyBelowFive(t *testing.T) {
	products := []model.Product{
		{ID: "a", Stock: model.Stock{Storefront: 5}},
		{ID: "b", Stock: model.Stock{Storefront: 4}},
		{ID: "c", Stock: model.Stock{Storefront: 0, Warehouse: 100}},
		{ID: "d", Stock: model.Stock{Storefront: 12}},
	}

	got := report.LowStock(products)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
	}
}

func TestTally_NoWindowCheck(t *testing.T) {
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got := report.Tally([]model.Sale{sale("1.25", old, "a"), sale("2.75", time.Now(), "b")})
	assert.Equal(t, 2, got.Count)
	assert.True(t, decimal.RequireFromString("4").Equal(got.Total))
}
