package repository

import (
	"context"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/domain/report"
)

type SaleFilter struct {
	From     *time.Time
	To       *time.Time
	SellerID string
	Limit    int // Listだけに効く
}

// 販売台帳。追記のみで更新・削除はしない
type SaleRepository interface {
	Create(ctx context.Context, sale model.Sale) (model.Sale, error)
	FindByID(ctx context.Context, id string) (model.Sale, error)
	//新しい順
	List(ctx context.Context, f SaleFilter) ([]model.Sale, error)
	//件数と合計。Limitに関係なく範囲全体
	Summarize(ctx context.Context, f SaleFilter) (report.Summary, error)
}
