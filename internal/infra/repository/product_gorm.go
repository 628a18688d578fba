package repository

import (
	"context"
	"strings"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	productListDefaultLimit = 500
	productListMaxLimit     = 1000
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索/カテゴリ/店頭在庫ありで絞って新しい順に返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	var products []model.Product

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// q は名前とバーコードを対象
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("(name ILIKE ? OR barcode ILIKE ?)", like, like)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		tx = tx.Where("category = ?", c)
	}
	if q.InStorefront {
		tx = tx.Where("stock_storefront > 0")
	}

	limit := q.Limit
	if limit <= 0 || limit > productListMaxLimit {
		limit = productListDefaultLimit
	}

	err := tx.Order("created_at desc").Order("id desc").Limit(limit).Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 店頭在庫 < below を全件、少ない順
func (r *ProductGormRepository) ListLowStock(ctx context.Context, below int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock_storefront < ?", below).
		Order("stock_storefront asc").Order("id asc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// SELECT ... FOR UPDATE。Txが終わるまで他の書き込みを待たせる
func (r *ProductGormRepository) FindByIDForUpdate(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Product{}, repo.ErrDuplicate
		}
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"barcode":          p.Barcode,
		"name":             p.Name,
		"category":         p.Category,
		"price":            p.Price,
		"cost":             p.Cost,
		"stock_warehouse":  p.Stock.Warehouse,
		"stock_storefront": p.Stock.Storefront,
		"updated_at":       p.UpdatedAt,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return repo.ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 読んだ値のままのときだけ書く（compare-and-set）
func (r *ProductGormRepository) SetStock(ctx context.Context, id string, expected model.Stock, next model.Stock) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock_warehouse = ? AND stock_storefront = ?", id, expected.Warehouse, expected.Storefront).
		// 在庫の移動では updated_at を変えない
		UpdateColumns(map[string]interface{}{
			"stock_warehouse":  next.Warehouse,
			"stock_storefront": next.Storefront,
		})

	if res.Error != nil {
		return res.Error
	}
	// 行ロック中なので0件は「誰かが先に書いた」
	if res.RowsAffected == 0 {
		return repo.ErrConflict
	}
	return nil
}

// 物理削除
func (r *ProductGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
