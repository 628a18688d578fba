package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/shopspring/decimal"
)

// 商品カタログと倉庫→店頭の移動
type InventoryUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	deps     Deps
}

// DI
func NewInventoryUsecase(tx repo.TransactionManager, products repo.ProductRepository, deps Deps) *InventoryUsecase {
	return &InventoryUsecase{
		tx:       tx,
		products: products,
		deps:     deps.withDefaults(),
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Q            string
	Category     string
	InStorefront bool
	Limit        int
}

func (u *InventoryUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	if len(in.Q) > 100 {
		return nil, Validation("q too long")
	}
	if in.Limit < 0 || in.Limit > 1000 {
		return nil, Validation("invalid limit")
	}

	items, err := u.products.List(ctx, repo.ProductListQuery{
		Q:            strings.TrimSpace(in.Q),
		Category:     strings.TrimSpace(in.Category),
		InStorefront: in.InStorefront,
		Limit:        in.Limit,
	})
	if err != nil {
		return nil, fromRepo(err, "not found")
	}
	return items, nil
}

func (u *InventoryUsecase) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return model.Product{}, Validation("invalid product id")
	}
	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, fromRepo(err, "product not found")
	}
	return p, nil
}

func (u *InventoryUsecase) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return model.Product{}, Validation("barcode required")
	}
	p, err := u.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return model.Product{}, fromRepo(err, "product not found")
	}
	return p, nil
}

// 作成と編集の共通入力
type ProductInput struct {
	Barcode    string
	Name       string
	Category   string
	Price      decimal.Decimal
	Cost       decimal.Decimal
	Warehouse  int64
	Storefront int64
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return Validation("name required")
	}
	if len(in.Name) > 255 {
		return Validation("name too long")
	}
	if strings.TrimSpace(in.Category) == "" {
		return Validation("category required")
	}
	if len(in.Category) > 100 {
		return Validation("category too long")
	}
	if len(in.Barcode) > 64 {
		return Validation("barcode too long")
	}
	if err := validateMoney("price", in.Price); err != nil {
		return err
	}
	if err := validateMoney("cost", in.Cost); err != nil {
		return err
	}
	if in.Warehouse < 0 || in.Storefront < 0 {
		return Validation("stock must be >= 0")
	}
	return nil
}

// 0以上・小数2桁まで
func validateMoney(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return Validation(field + " must be >= 0")
	}
	if v.Exponent() < -2 && !v.Equal(v.Round(2)) {
		return Validation(field + " must have at most 2 decimals")
	}
	return nil
}

// 新規商品は倉庫在庫だけを持ち、店頭は0から
func (u *InventoryUsecase) CreateProduct(ctx context.Context, actorID string, in ProductInput) (model.Product, error) {
	in.Storefront = 0
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	now := u.deps.Clock.Now()
	id := u.deps.IDs.NewID()
	barcode := strings.TrimSpace(in.Barcode)
	if barcode == "" {
		barcode = id
	}

	p := model.Product{
		ID:        id,
		Barcode:   barcode,
		Name:      strings.TrimSpace(in.Name),
		Category:  strings.TrimSpace(in.Category),
		Price:     in.Price.Round(2),
		Cost:      in.Cost.Round(2),
		Stock:     model.Stock{Warehouse: in.Warehouse},
		CreatedAt: now,
		UpdatedAt: now,
	}

	var created model.Product
	txCtx := context.WithoutCancel(ctx)
	err := u.tx.WithinTx(txCtx, func(r repo.TxRepos) error {
		var err error
		created, err = r.Products().Create(txCtx, p)
		if err != nil {
			return err
		}
		return r.AuditLogs().Create(txCtx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionCreateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   created.ID,
			AfterJSON:    snapshotJSON(created),
			CreatedAt:    now,
		})
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Product{}, Conflict("barcode already exists")
		}
		return model.Product{}, fromRepo(err, "product not found")
	}

	u.deps.Notifier.Publish(ctx, feed.TopicProducts)
	return created, nil
}

// 管理者の編集（両方の在庫も書き換えられる）
func (u *InventoryUsecase) UpdateProduct(ctx context.Context, actorID string, productID string, in ProductInput) (model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return model.Product{}, Validation("invalid product id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	now := u.deps.Clock.Now()
	var updated model.Product
	txCtx := context.WithoutCancel(ctx)
	err := u.tx.WithinTx(txCtx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return err
		}

		after := before
		after.Name = strings.TrimSpace(in.Name)
		after.Category = strings.TrimSpace(in.Category)
		after.Price = in.Price.Round(2)
		after.Cost = in.Cost.Round(2)
		after.Stock = model.Stock{Warehouse: in.Warehouse, Storefront: in.Storefront}
		if b := strings.TrimSpace(in.Barcode); b != "" {
			after.Barcode = b
		}
		after.UpdatedAt = now

		if err := r.Products().Update(txCtx, after); err != nil {
			return err
		}
		updated = after

		return r.AuditLogs().Create(txCtx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   snapshotJSON(before),
			AfterJSON:    snapshotJSON(after),
			CreatedAt:    now,
		})
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Product{}, Conflict("barcode already exists")
		}
		return model.Product{}, fromRepo(err, "product not found")
	}

	u.deps.Notifier.Publish(ctx, feed.TopicProducts)
	return updated, nil
}

// 物理削除。過去の販売明細はスナップショットなので残る
func (u *InventoryUsecase) DeleteProduct(ctx context.Context, actorID string, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return Validation("invalid product id")
	}

	now := u.deps.Clock.Now()
	txCtx := context.WithoutCancel(ctx)
	err := u.tx.WithinTx(txCtx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if err := r.Products().Delete(txCtx, productID); err != nil {
			return err
		}
		return r.AuditLogs().Create(txCtx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   snapshotJSON(before),
			CreatedAt:    now,
		})
	})
	if err != nil {
		return fromRepo(err, "product not found")
	}

	u.deps.Notifier.Publish(ctx, feed.TopicProducts)
	return nil
}

// 倉庫から店頭へquantityを移す。合計は変わらない
func (u *InventoryUsecase) Transfer(ctx context.Context, actorID string, productID string, quantity int64) (model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return model.Product{}, Validation("invalid product id")
	}
	if quantity <= 0 {
		return model.Product{}, Validation("quantity must be > 0")
	}

	var moved model.Product
	//始まったTxは最後まで走らせる
	txCtx := context.WithoutCancel(ctx)
	err := u.tx.WithinTx(txCtx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return err
		}

		//在庫を確定時に再チェックして減らす
		if quantity > p.Stock.Warehouse {
			return InsufficientStock(p.ID, p.Stock.Warehouse, "warehouse")
		}

		next := model.Stock{
			Warehouse:  p.Stock.Warehouse - quantity,
			Storefront: p.Stock.Storefront + quantity,
		}
		if err := r.Products().SetStock(txCtx, p.ID, p.Stock, next); err != nil {
			return err
		}

		p.Stock = next
		moved = p
		return nil
	})
	if err != nil {
		err = fromRepo(err, "product not found")
		u.deps.Metrics.ObserveTransfer(resultLabel(err))
		return model.Product{}, err
	}

	u.deps.Metrics.ObserveTransfer("ok")
	u.deps.Log.InfoContext(ctx, "stock transferred",
		slog.String("product_id", moved.ID),
		slog.Int64("quantity", quantity),
		slog.String("actor_id", actorID),
	)
	u.deps.Notifier.Publish(ctx, feed.TopicProducts)
	return moved, nil
}

// 監査ログ用
type productSnapshot struct {
	Barcode  string          `json:"barcode"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Stock    model.Stock     `json:"stock"`
}

func snapshotJSON(p model.Product) string {
	b, err := json.Marshal(productSnapshot{
		Barcode:  p.Barcode,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Cost:     p.Cost,
		Stock:    p.Stock,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}

// metricsのラベル
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if e, ok := AsError(err); ok {
		return strings.ToLower(string(e.Kind))
	}
	return "error"
}
