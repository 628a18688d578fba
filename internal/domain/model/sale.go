package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// 未知の値はエラー（efectivo / tarjeta も受け付ける）
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "efectivo":
		return PaymentCash, nil
	case "card", "tarjeta":
		return PaymentCard, nil
	default:
		return "", ErrUnknownPaymentMethod
	}
}

// 販売（追記のみ）
type Sale struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	SellerID      string          `gorm:"type:varchar(36);not null;index" json:"seller_id"`
	SellerName    string          `gorm:"type:varchar(255);not null" json:"seller_name"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(10);not null" json:"payment_method"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
}

// 明細は販売時点のスナップショット。商品を編集しても変わらない
type SaleItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	SaleID            string          `gorm:"type:varchar(36);not null;index" json:"-"`
	Position          int             `gorm:"not null" json:"-"`
	ProductID         string          `gorm:"type:varchar(36);not null;index" json:"product_id"`
	NameSnapshot      string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
}

func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPriceSnapshot.Mul(decimal.NewFromInt(i.Quantity))
}
