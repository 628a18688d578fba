package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRow はRedisが無い構成でカートをDBに置くための行（明細はJSONのまま）
type CartRow struct {
	SellerID  string    `gorm:"primaryKey;type:varchar(36)"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CartRow) TableName() string { return "carts" }

type cartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) repo.CartRepository {
	return &cartGormRepository{db: db}
}

// 無ければ空のカート
func (r *cartGormRepository) Get(ctx context.Context, sellerID string) (model.Cart, error) {
	var row CartRow
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Take(&row).Error
	if isNotFound(err) {
		return model.NewCart(sellerID), nil
	}
	if err != nil {
		return model.Cart{}, err
	}

	var c model.Cart
	if err := json.Unmarshal(row.Payload, &c); err != nil {
		return model.Cart{}, err
	}
	if c.Lines == nil {
		c.Lines = []model.CartLine{}
	}
	return c, nil
}

// seller_idで上書き（upsert）
func (r *cartGormRepository) Save(ctx context.Context, c model.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	row := CartRow{SellerID: c.SellerID, Payload: data, UpdatedAt: c.UpdatedAt}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}

// 無くてもエラーにしない
func (r *cartGormRepository) Delete(ctx context.Context, sellerID string) error {
	return r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Delete(&CartRow{}).Error
}
