// Package report は販売の日次集計と在庫少の抽出（読み取り専用）
package report

import (
	"sort"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 店頭在庫がこの値未満なら在庫少
const LowStockThreshold int64 = 5

// 1日の範囲 [00:00:00.000, 23:59:59.999]（両端を含む）
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func DayWindow(t time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return Window{Start: start, End: end}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type Summary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// sellerIDが空なら全員分
func Summarize(sales []model.Sale, w Window, sellerID string) Summary {
	in := make([]model.Sale, 0, len(sales))
	for _, s := range sales {
		if !w.Contains(s.CreatedAt) {
			continue
		}
		if sellerID != "" && s.SellerID != sellerID {
			continue
		}
		in = append(in, s)
	}
	return Tally(in)
}

// 絞り込み済みの販売を数えて足すだけ
func Tally(sales []model.Sale) Summary {
	out := Summary{Total: decimal.Zero}
	for _, s := range sales {
		out.Count++
		out.Total = out.Total.Add(s.Total)
	}
	return out
}

// 店頭在庫の少ない順
func LowStock(products []model.Product) []model.Product {
	out := make([]model.Product, 0)
	for _, p := range products {
		if p.Stock.Storefront < LowStockThreshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stock.Storefront < out[j].Stock.Storefront
	})
	return out
}
