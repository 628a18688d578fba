package repository

import (
	"context"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
)

// レジ担当ごとのカート（セッション）
type CartRepository interface {
	//なければ空のカートを返す
	Get(ctx context.Context, sellerID string) (model.Cart, error)
	Save(ctx context.Context, cart model.Cart) error
	Delete(ctx context.Context, sellerID string) error
}
