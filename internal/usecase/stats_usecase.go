package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/domain/report"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/shopspring/decimal"
)

// 1日の明細として返す販売の上限
const maxSalesPerDay = 1000

// 日次集計と在庫少（読み取りのみ）
type StatsUsecase struct {
	sales    repo.SaleRepository
	products repo.ProductRepository
	loc      *time.Location
	clock    Clock
}

// DI
func NewStatsUsecase(sales repo.SaleRepository, products repo.ProductRepository, loc *time.Location, deps Deps) *StatsUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &StatsUsecase{
		sales:    sales,
		products: products,
		loc:      loc,
		clock:    deps.withDefaults().Clock,
	}
}

type DailyStats struct {
	Date   string          `json:"date"`
	Window report.Window   `json:"window"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Sales  []model.Sale    `json:"sales"`
}

// YYYY-MM-DD（店舗のタイムゾーン）。空なら今日
func (u *StatsUsecase) ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return u.clock.Now(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, u.loc)
	if err != nil {
		return time.Time{}, Validation("date must be YYYY-MM-DD")
	}
	return d, nil
}

// sellerIDが空なら全員分。件数と合計は範囲全体、Salesだけ上限あり
func (u *StatsUsecase) Day(ctx context.Context, day time.Time, sellerID string) (DailyStats, error) {
	w := report.DayWindow(day, u.loc)
	f := repo.SaleFilter{
		From:     &w.Start,
		To:       &w.End,
		SellerID: sellerID,
		Limit:    maxSalesPerDay,
	}

	sum, err := u.sales.Summarize(ctx, f)
	if err != nil {
		return DailyStats{}, fromRepo(err, "not found")
	}
	sales, err := u.sales.List(ctx, f)
	if err != nil {
		return DailyStats{}, fromRepo(err, "not found")
	}
	if sales == nil {
		sales = []model.Sale{}
	}
	return DailyStats{
		Date:   w.Start.Format("2006-01-02"),
		Window: w,
		Count:  sum.Count,
		Total:  sum.Total,
		Sales:  sales,
	}, nil
}

// 管理画面の今日の売上
func (u *StatsUsecase) Today(ctx context.Context) (DailyStats, error) {
	return u.Day(ctx, u.clock.Now(), "")
}

// 販売員の今日の履歴
func (u *StatsUsecase) MySales(ctx context.Context, sellerID string) (DailyStats, error) {
	if strings.TrimSpace(sellerID) == "" {
		return DailyStats{}, Unauthorized("unauthorized")
	}
	return u.Day(ctx, u.clock.Now(), sellerID)
}

func (u *StatsUsecase) LowStock(ctx context.Context) ([]model.Product, error) {
	low, err := u.products.ListLowStock(ctx, report.LowStockThreshold)
	if err != nil {
		return nil, fromRepo(err, "not found")
	}
	return report.LowStock(low), nil
}
