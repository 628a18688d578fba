package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock は2つの場所（倉庫 / 店頭）の在庫数
type Stock struct {
	Warehouse  int64 `gorm:"not null" json:"warehouse"`
	Storefront int64 `gorm:"not null" json:"storefront"`
}

// 合計（移動しても変わらない）
func (s Stock) Total() int64 {
	return s.Warehouse + s.Storefront
}

func (s Stock) Valid() bool {
	return s.Warehouse >= 0 && s.Storefront >= 0
}

type Product struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Barcode   string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"barcode"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Category  string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Cost      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	Stock     Stock           `gorm:"embedded;embeddedPrefix:stock_" json:"stock"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}
