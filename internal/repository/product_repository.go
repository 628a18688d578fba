package repository

import (
	"context"
	"errors"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反（email / barcode）
	ErrDuplicate = errors.New("duplicate")
	// 読んだ値から変わっていた（再試行できる）
	ErrConflict = errors.New("write conflict")
	// 再試行の上限に達した
	ErrRetryExhausted = errors.New("transaction retry exhausted")
)

// 一覧検索
type ProductListQuery struct {
	Q            string
	Category     string
	InStorefront bool // 店頭在庫 > 0 のみ
	Limit        int
}

// 商品（在庫台帳）の永続化だけを約束。
type ProductRepository interface {
	//作成日時の新しい順
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (model.Product, error)
	//店頭在庫 < below の全件。少ない順、件数の上限なし
	ListLowStock(ctx context.Context, below int64) ([]model.Product, error)

	//行ロックして取得（Tx内で使う）
	FindByIDForUpdate(ctx context.Context, id string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	//名前・カテゴリ・価格・原価・バーコード・両方の在庫
	Update(ctx context.Context, p model.Product) error
	//expectedと一致するときだけnextに書き換える
	SetStock(ctx context.Context, id string, expected model.Stock, next model.Stock) error
	Delete(ctx context.Context, id string) error
}
