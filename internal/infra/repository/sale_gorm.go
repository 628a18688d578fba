package repository

import (
	"context"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/domain/report"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	saleListDefaultLimit = 200
	saleListMaxLimit     = 1000
)

type SaleGormRepository struct {
	db *gorm.DB
}

func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

// 販売と明細をまとめてINSERT
func (r *SaleGormRepository) Create(ctx context.Context, sale model.Sale) (model.Sale, error) {
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		sale.Items[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(&sale).Error; err != nil {
		return model.Sale{}, err
	}
	return sale, nil
}

func (r *SaleGormRepository) FindByID(ctx context.Context, id string) (model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("id = ?", id).
		First(&s).Error
	if isNotFound(err) {
		return model.Sale{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Sale{}, err
	}
	return s, nil
}

func (r *SaleGormRepository) List(ctx context.Context, f repo.SaleFilter) ([]model.Sale, error) {
	q := r.filtered(ctx, f)

	limit := f.Limit
	if limit <= 0 || limit > saleListMaxLimit {
		limit = saleListDefaultLimit
	}

	var sales []model.Sale
	err := q.Preload("Items", orderItems).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return []model.Sale{}, err
	}
	return sales, nil
}

// 件数と合計はDB側で数える（Limitは見ない）
func (r *SaleGormRepository) Summarize(ctx context.Context, f repo.SaleFilter) (report.Summary, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	err := r.filtered(ctx, f).
		Select("count(*) AS count, coalesce(sum(total), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return report.Summary{Total: decimal.Zero}, err
	}
	return report.Summary{Count: int(row.Count), Total: row.Total}, nil
}

// 期間は両端を含む
func (r *SaleGormRepository) filtered(ctx context.Context, f repo.SaleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	return q
}

// 明細はカートの順
func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
